package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// SessionTokenService signs and verifies wizard session tokens.
type SessionTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenService constructs a SessionTokenService.
func NewSessionTokenService(secret, issuer string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionTokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the token lifetime, which matches the session lifetime.
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token bound to sessionID.
func (s *SessionTokenService) Issue(sessionID string) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &models.WizardClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a token and returns the session id it is bound to.
func (s *SessionTokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.WizardClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid wizard token")
	}
	claims, ok := token.Claims.(*models.WizardClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid wizard token claims")
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid wizard token issuer")
	}
	return claims.SessionID, nil
}
