package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// PasswordHasher produces a stored hash for a new password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates account registration, login, logout and bearer
// token validation. Tokens are signed JWTs whose jti names a revocable
// session row, so both the signature and the row are checked on every
// request.
type AuthService struct {
	users          persistence.UserRepository
	sessions       persistence.AuthSessionRepository
	signer         *TokenSigner
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users persistence.UserRepository, sessions persistence.AuthSessionRepository, signer *TokenSigner, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		signer:   signer,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		verifyPassword: VerifyPassword,
		idGenerator:    idGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates an account and immediately issues a token for it.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (result AuthResult, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "account registered")
	}()

	if vErr := validateRegistration(email, params.Password, params.DisplayName); vErr.HasErrors() {
		err = vErr
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("failed to hash password: %w", err)
		return
	}

	user := persistence.User{
		ID:           s.idGenerator(),
		Email:        email,
		DisplayName:  strings.TrimSpace(params.DisplayName),
		PasswordHash: hash,
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		}
		return
	}

	stored, err := s.users.GetUser(ctx, user.ID)
	if err != nil {
		return
	}
	return s.issueToken(ctx, stored)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result AuthResult, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(user.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	return s.issueToken(ctx, user)
}

// Logout revokes the session named by the token. Already revoked or unknown
// sessions still produce a clean logout.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "Logout")

	claims, err := s.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		logger.WarnContext(ctx, "logout with unusable token", "error", err, "error_kind", ErrorKind(err))
		return nil
	}

	if _, err := s.sessions.RevokeAuthSession(ctx, claims.SessionID, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.WarnContext(ctx, "logout for unknown session", "session_id", claims.SessionID)
			return nil
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("session_id", claims.SessionID).InfoContext(ctx, "session revoked")
	return nil
}

// ValidateToken verifies a bearer token end to end and returns its principal.
// The JWT must verify and the named session row must exist, be unexpired and
// unrevoked.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil || s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ValidateToken")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "token validation failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	claims, err := s.signer.Parse(trimmed)
	if err != nil {
		return
	}

	session, err := s.sessions.GetAuthSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}
	if session.UserID != claims.UserID {
		err = ErrUnauthorized
		return
	}

	principal = Principal{UserID: session.UserID}
	return
}

func (s *AuthService) issueToken(ctx context.Context, user persistence.User) (AuthResult, error) {
	now := s.now()

	if err := s.sessions.DeleteExpiredAuthSessions(ctx, now); err != nil {
		return AuthResult{}, err
	}

	session, err := s.sessions.CreateAuthSession(ctx, persistence.AuthSession{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.signer.Sign(session.ID, user.ID, now, session.ExpiresAt)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return AuthResult{
		User: User{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
		},
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func validateRegistration(email, password, displayName string) *ValidationError {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email must be a valid address")
	}
	if len(password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(displayName) == "" {
		vErr.add("displayName", "display name is required")
	}
	return vErr
}
