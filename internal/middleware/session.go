package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
)

const (
	// ContextUserKey is the gin context key storing the caller's *models.Identity.
	ContextUserKey = "currentUser"
	// ContextSessionKey is the gin context key storing the raw session token.
	ContextSessionKey = "sessionToken"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Read returns the token sent by the client, if any.
func (sc SessionCookie) Read(c *gin.Context) string {
	token, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return token
}

// Write hands the session token to the client.
func (sc SessionCookie) Write(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie on the client.
func (sc SessionCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session identifies the caller from the session cookie. It never blocks:
// callers without a valid session continue anonymously. A store failure is
// logged and also treated as anonymous.
func Session(sessions sessionResolver, cookie SessionCookie, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := cookie.Read(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Error("resolve session", zap.Error(err))
			c.Next()
			return
		}

		if session.Authenticated() {
			c.Set(ContextUserKey, session.Identity)
			c.Set(ContextSessionKey, session.Token)
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Session, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// SessionToken returns the token of an authenticated session, or "".
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}
