package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eygar/payment-service/internal"
)

// LocalVerifier validates HMAC-signed access tokens in process, without
// calling the identity service. Deployments that share the signing secret
// with the identity provider can run in this mode.
type LocalVerifier struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
}

func NewLocalVerifier(cfg internal.AuthConfig) *LocalVerifier {
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		method = jwt.SigningMethodHS256
	}
	return &LocalVerifier{
		secret:   []byte(cfg.SecretKey),
		method:   method,
		lifetime: cfg.TokenLifetime,
	}
}

func (v *LocalVerifier) Verify(_ context.Context, tokenString string) (*internal.Identity, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, internal.ErrBadCredentials
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, internal.ErrBadCredentials
	}

	userID := claimString(claims, "user_id")
	if userID == "" {
		userID = claimString(claims, "sub")
	}
	if userID == "" {
		return nil, internal.NewUnauthorizedError("Invalid token payload", internal.ErrCodeInvalidToken)
	}

	return &internal.Identity{
		ID:       userID,
		Email:    claimString(claims, "email"),
		IsActive: true,
	}, nil
}

// GenerateToken mints an access token with the verifier's secret and
// lifetime. Used by tooling and tests.
func (v *LocalVerifier) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(v.lifetime).Unix(),
		"iat":     now.Unix(),
	}
	return jwt.NewWithClaims(v.method, claims).SignedString(v.secret)
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
