package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/domain"
	"github.com/spec-kit/talent-gateway/internal/events"
	"github.com/spec-kit/talent-gateway/internal/upstream"
)

// AuthService coordinates the login flow: credential validation upstream,
// then session token minting. Re-issuance is sliding: a fresh token is minted
// on every successful login, never refreshed by protected requests.
type AuthService struct {
	validator  *upstream.CredentialValidator
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(validator *upstream.CredentialValidator, tokens *auth.TokenManager, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{validator: validator, tokens: tokens, dispatcher: dispatcher}
}

// Login validates the credential pair and mints a session token. The
// returned identity carries the token's temporal claims.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error) {
	identity, err := s.validator.Validate(ctx, email, password)
	if err != nil {
		s.publish(ctx, events.EventLoginFailed, events.LoginFailedPayload{
			Email:  email,
			Reason: err.Error(),
		})
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(*identity)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	identity.IssuedAt = time.Now()
	identity.ExpiresAt = expiresAt

	s.publish(ctx, events.EventLoginSucceeded, events.LoginSucceededPayload{
		SubjectID: identity.SubjectID,
		Role:      identity.Role,
	})
	return identity, token, expiresAt, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
