// Package services implements the login/2FA state machine on top of the
// credential store, the TOTP engine and the session token codec.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/dmitrijs2005/llave/internal/logging"
	"github.com/dmitrijs2005/llave/internal/server/auth"
	"github.com/dmitrijs2005/llave/internal/server/config"
	"github.com/dmitrijs2005/llave/internal/server/totp"
	"github.com/dmitrijs2005/llave/internal/server/users"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// StoreInitializer is the lazy bootstrap contract every operation runs
// before its first store access.
type StoreInitializer interface {
	Ensure(ctx context.Context) error
	Check(ctx context.Context) (string, error)
}

// TwoFactorSetup is returned by SetupTwoFactor. QRCode is a
// data:image/png;base64 URI of the provisioning QR.
type TwoFactorSetup struct {
	Secret            string
	QRCode            string
	AlreadyConfigured bool
}

type AuthService struct {
	repo          users.Repository
	init          StoreInitializer
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	totpIssuer    string
}

func NewAuthService(repo users.Repository, init StoreInitializer, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		repo:          repo,
		init:          init,
		logger:        logger.With("module", "auth_service"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
		totpIssuer:    cfg.TOTPIssuer,
	}
}

// NormalizeEmail pins the email policy: lookups and storage are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) ensureStore(ctx context.Context) error {
	if err := s.init.Ensure(ctx); err != nil {
		if errors.Is(err, common.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *AuthService) issueToken(user *users.User, twoFactorVerified bool) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.Email, twoFactorVerified, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// Register creates a user and returns it with a full session token. A new
// account cannot have 2FA enabled, so the token is issued verified.
func (s *AuthService) Register(ctx context.Context, email, password string) (*users.User, string, error) {

	if err := s.ensureStore(ctx); err != nil {
		return nil, "", err
	}

	email = NormalizeEmail(email)
	if email == "" {
		return nil, "", common.ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, "", common.ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", common.ErrDuplicateUser
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, "", common.ErrInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	user := &users.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	// the unique index still backstops a create/create race
	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, "", common.ErrDuplicateUser
		}
		return nil, "", common.ErrInternal
	}

	token, err := s.issueToken(user, true)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login authenticates by password. With 2FA enabled the returned token is
// partial (TwoFactorVerified=false) and requiresTwoFactor is true. An
// unknown email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*users.User, string, bool, error) {

	if err := s.ensureStore(ctx); err != nil {
		return nil, "", false, err
	}

	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", false, common.ErrInvalidCredentials
		}
		return nil, "", false, common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", false, common.ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		token, err := s.issueToken(user, false)
		if err != nil {
			return nil, "", false, err
		}
		return user, token, true, nil
	}

	token, err := s.issueToken(user, true)
	if err != nil {
		return nil, "", false, err
	}
	return user, token, false, nil
}

// SetupTwoFactor generates a shared secret for the user, or returns the
// existing one when setup is already pending or enabled. The secret is
// persisted immediately but TwoFactorEnabled stays false until the user
// confirms a code with enable=true.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID string) (*TwoFactorSetup, error) {

	if err := s.ensureStore(ctx); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, common.ErrInternal
	}

	if user.TwoFactorSecret != "" {
		uri := totp.ProvisioningURI(s.totpIssuer, user.Email, user.TwoFactorSecret)
		qr, err := totp.QRCodeDataURI(uri)
		if err != nil {
			return nil, common.ErrInternal
		}
		return &TwoFactorSetup{Secret: user.TwoFactorSecret, QRCode: qr, AlreadyConfigured: true}, nil
	}

	setup, err := totp.GenerateSecret(s.totpIssuer, user.Email)
	if err != nil {
		return nil, common.ErrInternal
	}

	qr, err := totp.QRCodeDataURI(setup.ProvisioningURI)
	if err != nil {
		return nil, common.ErrInternal
	}

	user.TwoFactorSecret = setup.Secret
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "two-factor setup started", "user_id", user.ID)

	return &TwoFactorSetup{Secret: setup.Secret, QRCode: qr}, nil
}

// VerifyTwoFactor checks the submitted code against the user's pending or
// enabled secret and issues a full session token. With enable=true a
// not-yet-enabled secret is confirmed, flipping TwoFactorEnabled.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, userID, code string, enable bool) (*users.User, string, error) {

	if err := s.ensureStore(ctx); err != nil {
		return nil, "", err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthenticated
		}
		return nil, "", common.ErrInternal
	}

	if user.TwoFactorSecret == "" {
		return nil, "", common.ErrNotConfigured
	}

	if !totp.VerifyCode(user.TwoFactorSecret, code) {
		return nil, "", common.ErrInvalidCode
	}

	if enable && !user.TwoFactorEnabled {
		user.TwoFactorEnabled = true
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, "", common.ErrInternal
		}
		s.logger.Info(ctx, "two-factor enabled", "user_id", user.ID)
	}

	token, err := s.issueToken(user, true)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// WhoAmI resolves the token's subject to the stored user record.
func (s *AuthService) WhoAmI(ctx context.Context, userID string) (*users.User, error) {

	if err := s.ensureStore(ctx); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Authenticate parses and validates a session token. Every failure maps to
// ErrUnauthenticated without detail.
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}
	return claims, nil
}

// Health reports store connectivity for the health endpoint.
func (s *AuthService) Health(ctx context.Context) (string, error) {
	if err := s.ensureStore(ctx); err != nil {
		return "", err
	}
	return s.init.Check(ctx)
}

// EnsureStore exposes lazy initialization for the explicit init endpoint
// and the dbinit command.
func (s *AuthService) EnsureStore(ctx context.Context) error {
	return s.ensureStore(ctx)
}
