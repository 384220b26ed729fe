package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/pkg/logger"
)

// RemoteVerifier exchanges bearer tokens with the identity service by calling
// its profile endpoint. It never retries; any failure is terminal for the
// request that carried the token.
type RemoteVerifier struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewRemoteVerifier(baseURL string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteVerifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logger.LoggerWrapper(),
	}
}

// profileID is the identity service's user id, which it serializes as either
// a JSON number or a string depending on the backing store.
type profileID string

func (id *profileID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = profileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = profileID(n.String())
	return nil
}

// profilePayload mirrors the identity service's user object. Booleans are
// pointers so absent fields can fall back to their documented defaults.
type profilePayload struct {
	ID          profileID `json:"id"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    *bool     `json:"is_active"`
	IsVerified  *bool     `json:"is_verified"`
	IsStaff     *bool     `json:"is_staff"`
	IsSuperuser *bool     `json:"is_superuser"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*internal.Identity, error) {
	endpoint := fmt.Sprintf("%s/profile/", v.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to build auth request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			v.logger.Error("auth service timeout", "url", endpoint)
			return nil, internal.ErrAuthTimeout
		}
		v.logger.Error("auth service unreachable", "url", endpoint, "error", err)
		return nil, internal.ErrAuthUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, internal.ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		v.logger.Error("auth service returned unexpected status", "status", resp.StatusCode)
		return nil, internal.ErrBadCredentials
	}

	var payload profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		v.logger.Error("failed to decode profile response", "error", err)
		return nil, internal.ErrBadCredentials
	}

	return &internal.Identity{
		ID:          string(payload.ID),
		Email:       payload.Email,
		AvatarURL:   payload.AvatarURL,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		IsActive:    boolOrDefault(payload.IsActive, true),
		IsVerified:  boolOrDefault(payload.IsVerified, false),
		IsStaff:     boolOrDefault(payload.IsStaff, false),
		IsSuperuser: boolOrDefault(payload.IsSuperuser, false),
	}, nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
