package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
	"github.com/noah-isme/nrb-complaints-api/internal/repository"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (int64, error)
}

// AuthService registers and authenticates accounts.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, metrics: metrics}
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a citizen account and returns its id.
func (s *AuthService) Register(ctx context.Context, req models.CredentialsRequest) (int64, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return 0, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, &models.User{Email: req.Email, PasswordHash: hash, Role: models.RoleCitizen})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return 0, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register user")
	}

	s.metrics.RecordRegistration()
	s.logger.Info("user registered", zap.Int64("user_id", id))
	return id, nil
}

// Authenticate verifies credentials. Unknown email and wrong password fail
// with the same error.
func (s *AuthService) Authenticate(ctx context.Context, req models.CredentialsRequest) (*models.Identity, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	s.metrics.RecordLogin(true)
	return user.Identity(), nil
}

// EnsureAdmin creates the bootstrap administrator unless an account with
// that email already exists. Existing accounts are never modified. An empty
// password is replaced by a generated one that is logged once.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "admin email is required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.logger.Debug("admin account present", zap.String("email", email))
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up admin")
	}

	generated := password == ""
	if generated {
		var err error
		if password, err = generatePassword(); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate admin password")
		}
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	if _, err := s.repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	if generated {
		s.logger.Warn("admin account created with generated password; set ADMIN_PASSWORD to choose one",
			zap.String("email", email), zap.String("password", password))
	} else {
		s.logger.Info("admin account created", zap.String("email", email))
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password is too long")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
