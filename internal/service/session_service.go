package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
	"github.com/noah-isme/nrb-complaints-api/internal/repository"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
)

const sessionIssuer = "nrb-complaints-api"

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.Identity, error)
	Set(ctx context.Context, id string, identity *models.Identity, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// SessionConfig defines how session tokens are signed and how long they live.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionService maps signed opaque tokens to server-side identities.
type SessionService struct {
	store  sessionStore
	logger *zap.Logger
	config SessionConfig
	now    func() time.Time
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(store sessionStore, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &SessionService{store: store, logger: logger, config: config, now: time.Now}
}

// TTL is the lifetime of newly created sessions.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

// Create starts an authenticated session for identity and returns the
// signed token to hand to the client.
func (s *SessionService) Create(ctx context.Context, identity *models.Identity) (*models.Session, time.Time, error) {
	if identity == nil {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrInternal, "cannot create session without identity")
	}

	id := uuid.NewString()
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.TTL)

	if err := s.store.Set(ctx, id, identity, s.config.TTL); err != nil {
		return nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	claims := &models.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        id,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		_ = s.store.Destroy(ctx, id)
		return nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}

	return &models.Session{Token: token, Identity: identity}, expiresAt, nil
}

// Resolve returns the session for token. Missing, forged, expired and
// destroyed tokens resolve to an anonymous session; only store failures
// are reported as errors.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	anonymous := &models.Session{}
	if token == "" {
		return anonymous, nil
	}

	id, err := s.sessionID(token)
	if err != nil {
		s.logger.Debug("rejecting session token", zap.Error(err))
		return anonymous, nil
	}

	identity, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return anonymous, nil
		}
		return anonymous, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	return &models.Session{Token: token, Identity: identity}, nil
}

// Destroy ends the session behind token. Invalid tokens are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := s.sessionID(token)
	if err != nil {
		return nil
	}
	if err := s.store.Destroy(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not log out")
	}
	return nil
}

func (s *SessionService) sessionID(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return "", errors.New("invalid session claims")
	}
	return claims.ID, nil
}
