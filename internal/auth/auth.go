package auth

import (
	"context"

	"github.com/eygar/payment-service/internal"
)

// Verifier resolves a bearer credential to a caller identity. The HTTP
// surface depends only on this interface so tests can substitute a stub.
type Verifier interface {
	Verify(ctx context.Context, token string) (*internal.Identity, error)
}

// NewVerifier picks the verifier implementation for the configured auth mode.
func NewVerifier(cfg internal.AuthConfig) Verifier {
	if cfg.Mode == internal.AuthModeLocal {
		return NewLocalVerifier(cfg)
	}
	return NewRemoteVerifier(cfg.ServiceURL, cfg.RequestTimeout)
}
