// Package upstream talks to the remote authentication endpoint that owns
// credentials. Validation happens once per login; the gateway itself never
// stores or hashes a password.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-gateway/internal/domain"
)

// Credential validation outcomes.
var (
	// ErrInvalidCredentials covers every non-success answer from the
	// authenticator. Backend detail is logged, never used for control flow.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUpstreamUnavailable covers connection failures and timeouts.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// CredentialValidator exchanges a credential pair for a verified identity by
// calling the upstream authentication endpoint. It holds no state beyond its
// HTTP client and is safe for concurrent use.
type CredentialValidator struct {
	authURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewCredentialValidator builds a validator for the given auth endpoint.
func NewCredentialValidator(authURL string, timeout time.Duration, logger *zap.Logger) *CredentialValidator {
	return &CredentialValidator{
		authURL: authURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Validate forwards the raw credential pair and returns the verified
// identity. Callers must not retry automatically: repeated submissions mask
// brute-force signals. The password is never logged.
func (v *CredentialValidator) Validate(ctx context.Context, email, password string) (*domain.Identity, error) {
	payload, err := json.Marshal(credentialRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode credential request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.authURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build credential request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("authenticator unreachable", zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		v.logger.Warn("authenticator response unreadable", zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Any rejection collapses to invalid credentials regardless of
		// what the backend reported.
		v.logger.Info("credential validation rejected",
			zap.String("email", email),
			zap.Int("status", resp.StatusCode))
		return nil, ErrInvalidCredentials
	}

	var upstream identityResponse
	if err := json.Unmarshal(body, &upstream); err != nil {
		v.logger.Error("authenticator returned malformed identity", zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}

	role, err := domain.ParseRole(upstream.Role)
	if err != nil {
		v.logger.Error("authenticator returned unknown role", zap.String("role", upstream.Role))
		return nil, ErrInvalidCredentials
	}
	if upstream.ID == "" {
		return nil, ErrInvalidCredentials
	}

	return &domain.Identity{
		SubjectID: upstream.ID,
		Email:     upstream.Email,
		Role:      role,
		Status:    upstream.Status,
	}, nil
}
