package domain

import (
	"fmt"
	"time"
)

// Role classifies an authenticated subject. The set is closed: any value
// outside the three constants is rejected at parse time, never defaulted.
type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleEmployer  Role = "EMPLOYER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCandidate, RoleEmployer, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Identity is the verified subject minted at login and embedded verbatim
// into every session token. Immutable after creation.
type Identity struct {
	SubjectID string
	Email     string
	Role      Role
	Status    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
