package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the verified content of a bearer token. SessionID is the
// `jti` claim and names the auth_sessions row the token was issued for.
type TokenClaims struct {
	SessionID string
	UserID    string
}

// TokenSigner issues and verifies the HMAC-signed session tokens handed to
// clients. Signature and expiry checks happen here; revocation is checked
// against the session row by the auth service.
type TokenSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenSigner constructs a TokenSigner for the given shared secret. A nil
// now falls back to wall-clock time.
func NewTokenSigner(secret []byte, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{secret: secret, issuer: "reading-nook", now: now}
}

// Sign produces a token bound to the session and user.
func (t *TokenSigner) Sign(sessionID, userID string, issuedAt, expiresAt time.Time) (string, error) {
	if t == nil || len(t.secret) == 0 {
		return "", fmt.Errorf("token signer not configured")
	}

	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   userID,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature and expiry and extracts the claims. Expired
// tokens map to ErrSessionExpired; everything else invalid maps to
// ErrInvalidCredentials.
func (t *TokenSigner) Parse(token string) (TokenClaims, error) {
	if t == nil || len(t.secret) == 0 {
		return TokenClaims{}, fmt.Errorf("token signer not configured")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrSessionExpired
		}
		return TokenClaims{}, ErrInvalidCredentials
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidCredentials
	}

	return TokenClaims{SessionID: claims.ID, UserID: claims.Subject}, nil
}
