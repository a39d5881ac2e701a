package auth

import (
	"accounts/internal/entity"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed lifetime of an issued token.
const DefaultTokenTTL = time.Hour

var (
	// ErrTokenMissing is returned when no token was supplied.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenExpired matches ExpiredError values.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and unexpected algorithms.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrUnauthorized is the single failure reported in VerifyCollapsed mode.
	ErrUnauthorized = errors.New("unauthorized")
)

// ExpiredError reports the moment an otherwise valid token expired.
type ExpiredError struct {
	ExpiredAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("token expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *ExpiredError) Is(target error) bool {
	return target == ErrTokenExpired
}

// VerifyMode selects how verification failures are reported to the caller.
type VerifyMode string

const (
	// VerifyStrict distinguishes missing, expired and invalid tokens.
	VerifyStrict VerifyMode = "strict"
	// VerifyCollapsed reports every failure as ErrUnauthorized.
	VerifyCollapsed VerifyMode = "collapsed"
)

// ParseVerifyMode returns the mode named by value, or false when value is not a known mode.
func ParseVerifyMode(value string) (VerifyMode, bool) {
	switch VerifyMode(strings.ToLower(strings.TrimSpace(value))) {
	case VerifyStrict:
		return VerifyStrict, true
	case VerifyCollapsed:
		return VerifyCollapsed, true
	default:
		return "", false
	}
}

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	UserID uint   `json:"userId"`
	Surnom string `json:"surnom"`
	jwt.RegisteredClaims
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, expiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = DefaultTokenTTL
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "accounts"
	}
	return &Manager{
		secret: []byte(trimmed),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// GenerateToken issues a signed JWT for the provided user.
func (m *Manager) GenerateToken(user *entity.DbUser) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	now := m.now().UTC()
	expiry := now.Add(m.expiry)

	claims := Claims{
		UserID: user.ID,
		Surnom: user.Surnom,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ParseToken validates the token and returns claims. Failures are
// ErrTokenMissing, an *ExpiredError, or an error wrapping ErrTokenInvalid.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && token != nil {
			if claims, ok := token.Claims.(*Claims); ok && claims.ExpiresAt != nil {
				return nil, &ExpiredError{ExpiredAt: claims.ExpiresAt.Time}
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenInvalid)
	}
	return claims, nil
}

// Verify parses the token and reports failures according to mode.
func (m *Manager) Verify(tokenString string, mode VerifyMode) (*Claims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil && mode == VerifyCollapsed {
		return nil, ErrUnauthorized
	}
	return claims, err
}
