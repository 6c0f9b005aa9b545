package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"

	"doudizhu/internal/domain"
)

var ErrInvalidToken = errors.New("invalid player token")

// NewPlayerID returns a fresh stable player identity.
func NewPlayerID() domain.PlayerID {
	return domain.PlayerID(uuid.NewString())
}

// TokenService issues and verifies signed player tokens so a reconnecting
// client keeps its PlayerID.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue signs an HS256 token whose subject is pid.
func (s *TokenService) Issue(pid domain.PlayerID) (string, error) {
	if s == nil {
		return "", fmt.Errorf("token service is nil")
	}
	if pid == "" {
		return "", fmt.Errorf("player id is required")
	}
	if len(s.secret) == 0 || s.issuer == "" {
		return "", fmt.Errorf("token config is incomplete")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": string(pid),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	if s.ttl > 0 {
		claims["exp"] = now.Add(s.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Resolve verifies a token and returns its PlayerID.
func (s *TokenService) Resolve(tokenString string) (domain.PlayerID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return "", fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return domain.PlayerID(sub), nil
}
