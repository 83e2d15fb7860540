package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/talent-gateway/internal/domain"
)

const testSecret = "unit-test-signing-secret"

func testIdentity() domain.Identity {
	return domain.Identity{
		SubjectID: "subj-42",
		Email:     "dev@example.com",
		Role:      domain.RoleCandidate,
		Status:    "active",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testSecret, time.Hour)
	token, expiresAt, err := tm.GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken returned empty token")
	}

	identity, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if identity.SubjectID != "subj-42" {
		t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "subj-42")
	}
	if identity.Email != "dev@example.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "dev@example.com")
	}
	if identity.Role != domain.RoleCandidate {
		t.Errorf("Role = %q, want %q", identity.Role, domain.RoleCandidate)
	}
	if identity.Status != "active" {
		t.Errorf("Status = %q, want %q", identity.Status, "active")
	}
	if !identity.ExpiresAt.Equal(expiresAt.Truncate(time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", identity.ExpiresAt, expiresAt.Truncate(time.Second))
	}
	if !identity.ExpiresAt.After(identity.IssuedAt) {
		t.Errorf("ExpiresAt %v not after IssuedAt %v", identity.ExpiresAt, identity.IssuedAt)
	}
}

func TestParseTokenExpired(t *testing.T) {
	t.Parallel()

	// Craft an already-expired token with the same secret.
	claims := &Claims{
		SubjectID: "subj-42",
		Email:     "dev@example.com",
		Role:      string(domain.RoleCandidate),
		Status:    "active",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subj-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tm := NewTokenManager(testSecret, time.Hour)
	if _, err := tm.ParseToken(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("ParseToken = %v, want ErrTokenExpired", err)
	}
}

func TestParseTokenTampered(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// Flip one byte in the payload segment. The result must be the same
	// externally-observable failure as any other invalid token.
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'A' {
		raw[mid] = 'B'
	} else {
		raw[mid] = 'A'
	}

	if _, err := tm.ParseToken(string(raw)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken(tampered) = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("other-secret", time.Hour).GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tm := NewTokenManager(testSecret, time.Hour)
	if _, err := tm.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenUnknownRole(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		SubjectID: "subj-42",
		Role:      "SUPERUSER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tm := NewTokenManager(testSecret, time.Hour)
	if _, err := tm.ParseToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken(unknown role) = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenRejectsUnexpectedMethod(t *testing.T) {
	t.Parallel()

	// alg=none style tokens must never verify.
	claims := &Claims{
		SubjectID: "subj-42",
		Role:      string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tm := NewTokenManager(testSecret, time.Hour)
	if _, err := tm.ParseToken(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken(alg=none) = %v, want ErrTokenInvalid", err)
	}
}

func TestNewTokenManagerDefaultTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testSecret, 0)
	if tm.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", tm.TTL(), DefaultTokenTTL)
	}
}
