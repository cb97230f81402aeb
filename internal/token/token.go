// Package token issues and validates the signed bearer tokens used by the
// admin API. Tokens are self-contained HS256 JWTs; there is no server-side
// session store, so a token cannot be invalidated before its natural expiry.
// Logout is a client-side discard.
package token

import (
	"errors"
	"strconv"
	"time"

	"navtools/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed, badly signed and expired tokens
	// alike. Callers must not learn which, so decoding reports a single
	// failure value.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongTokenType is returned when a refresh operation receives an
	// access token (or vice versa).
	ErrWrongTokenType = errors.New("wrong token type")
)

const typeRefresh = "refresh"

// Claims is the token payload. Type is empty for access tokens and
// "refresh" for refresh tokens.
type Claims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a process-wide symmetric secret.
// All methods are pure and safe for concurrent use.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(cfg config.JWTConfig) *Service {
	return &Service{
		secret:     []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessExpireMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpireDays) * 24 * time.Hour,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessToken mints a short-lived access token for the given subject.
func (s *Service) IssueAccessToken(subjectID uint) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	signed, err := s.sign(subjectID, "", expiresAt)
	return signed, expiresAt, err
}

// IssueRefreshToken mints a long-lived refresh token for the given subject.
func (s *Service) IssueRefreshToken(subjectID uint) (string, error) {
	signed, err := s.sign(subjectID, typeRefresh, time.Now().Add(s.refreshTTL))
	return signed, err
}

func (s *Service) sign(subjectID uint, tokenType string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Decode verifies signature and expiry and returns the claims.
func (s *Service) Decode(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SubjectID parses the numeric subject out of decoded claims.
func (c *Claims) SubjectID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Refresh validates a refresh token and rotates the pair. Rotation is
// unconditional; there is no revocation list, so the old refresh token
// remains usable until it expires.
func (s *Service) Refresh(refreshToken string) (access, newRefresh string, expiresAt time.Time, err error) {
	claims, err := s.Decode(refreshToken)
	if err != nil {
		return "", "", time.Time{}, err
	}
	if claims.Type != typeRefresh {
		return "", "", time.Time{}, ErrWrongTokenType
	}
	subject, err := claims.SubjectID()
	if err != nil {
		return "", "", time.Time{}, err
	}
	access, expiresAt, err = s.IssueAccessToken(subject)
	if err != nil {
		return "", "", time.Time{}, err
	}
	newRefresh, err = s.IssueRefreshToken(subject)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return access, newRefresh, expiresAt, nil
}
