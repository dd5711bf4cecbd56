package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/middleware"
	"github.com/noah-isme/nrb-complaints-api/internal/models"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
	"github.com/noah-isme/nrb-complaints-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req models.CredentialsRequest) (int64, error)
	Authenticate(ctx context.Context, req models.CredentialsRequest) (*models.Identity, error)
}

type sessionService interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Session, time.Time, error)
	Destroy(ctx context.Context, token string) error
}

// AuthHandler wires registration, login and session endpoints.
type AuthHandler struct {
	auth     authService
	sessions sessionService
	cookie   middleware.SessionCookie
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth authService, sessions sessionService, cookie middleware.SessionCookie, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, sessions: sessions, cookie: cookie, logger: logger}
}

// Register godoc
// @Summary Register a citizen account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.CredentialsRequest true "Credentials"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope
// @Router /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required"))
		return
	}

	id, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, models.RegisterResponse{Message: "User registered successfully.", UserID: id})
}

// Login godoc
// @Summary Log in and start a session
// @Description Sets an HttpOnly session cookie on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.CredentialsRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 401 {object} response.ErrorEnvelope
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required"))
		return
	}

	identity, err := h.auth.Authenticate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// A fresh token on every login; the previous one, if any, is retired.
	if previous := middleware.SessionToken(c); previous != "" {
		if err := h.sessions.Destroy(c.Request.Context(), previous); err != nil {
			h.logger.Warn("destroy previous session", zap.Error(err))
		}
	}

	session, expiresAt, err := h.sessions.Create(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cookie.Write(c, session.Token, expiresAt)

	response.OK(c, models.LoginResponse{Message: "Login successful.", User: identity})
}

// Logout godoc
// @Summary End the current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Message
// @Failure 500 {object} response.ErrorEnvelope
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token == "" {
		token = h.cookie.Read(c)
	}

	err := h.sessions.Destroy(c.Request.Context(), token)
	h.cookie.Clear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Message{Message: "Logout successful."})
}

// Session godoc
// @Summary Report the current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.SessionStatus
// @Router /api/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		response.OK(c, models.SessionStatus{LoggedIn: false})
		return
	}
	response.OK(c, models.SessionStatus{LoggedIn: true, User: identity})
}
