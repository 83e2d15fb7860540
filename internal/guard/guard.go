// Package guard decides whether a page request may proceed, purely from the
// request path, the session identity and a static rule table.
package guard

import (
	"strings"

	"github.com/spec-kit/talent-gateway/internal/domain"
)

// Action is a terminal guard outcome. There is no intermediate state.
type Action int

const (
	// ActionAllow lets the request proceed to dispatch.
	ActionAllow Action = iota
	// ActionRedirect short-circuits the request with a 302 to Target.
	ActionRedirect
)

// Decision is the result of evaluating a path against the rule table.
type Decision struct {
	Action Action
	Target string
}

// Rule restricts a path namespace to a set of roles and names where to send
// callers that do not qualify.
type Rule struct {
	PathPrefix              string
	AllowedRoles            map[domain.Role]struct{}
	UnauthenticatedRedirect string
	WrongRoleRedirectByRole map[domain.Role]string
}

// Table is an ordered set of rules, built once at startup and read-only for
// the process lifetime.
type Table struct {
	rules        []Rule
	homeRedirect string
}

// NewTable builds a guard table. homeRedirect is the fallback target for
// roles with no configured wrong-role redirect.
func NewTable(homeRedirect string, rules []Rule) *Table {
	return &Table{rules: rules, homeRedirect: homeRedirect}
}

// Well-known redirect targets.
const (
	LoginPath         = "/login"
	SiteHomePath      = "/"
	CandidateHomePath = "/candidate/dashboard"
	EmployerHomePath  = "/employer/dashboard"
	AdminHomePath     = "/admin/dashboard"
)

// DefaultTable returns the gateway's page guard policy. Both browsing
// protection and API role checks draw their role vocabulary from the same
// domain.Role set, so the two cannot drift apart.
func DefaultTable() *Table {
	return NewTable(SiteHomePath, []Rule{
		{
			PathPrefix:              "/candidate",
			AllowedRoles:            roleSet(domain.RoleCandidate),
			UnauthenticatedRedirect: LoginPath,
			WrongRoleRedirectByRole: map[domain.Role]string{
				domain.RoleEmployer: EmployerHomePath,
				domain.RoleAdmin:    AdminHomePath,
			},
		},
		{
			PathPrefix:              "/employer",
			AllowedRoles:            roleSet(domain.RoleEmployer),
			UnauthenticatedRedirect: LoginPath,
			WrongRoleRedirectByRole: map[domain.Role]string{
				domain.RoleCandidate: CandidateHomePath,
				domain.RoleAdmin:     AdminHomePath,
			},
		},
		{
			PathPrefix:              "/admin",
			AllowedRoles:            roleSet(domain.RoleAdmin),
			UnauthenticatedRedirect: LoginPath,
			WrongRoleRedirectByRole: map[domain.Role]string{},
		},
	})
}

// Decide evaluates a request path against the table. Paths matching no rule
// are implicitly allowed: the guard only restricts declared namespaces. When
// several prefixes match, the longest one wins.
func (t *Table) Decide(path string, identity *domain.Identity) Decision {
	rule := t.match(path)
	if rule == nil {
		return Decision{Action: ActionAllow}
	}

	if identity == nil {
		return Decision{Action: ActionRedirect, Target: rule.UnauthenticatedRedirect}
	}

	if _, ok := rule.AllowedRoles[identity.Role]; ok {
		return Decision{Action: ActionAllow}
	}

	target, ok := rule.WrongRoleRedirectByRole[identity.Role]
	if !ok {
		target = t.homeRedirect
	}
	return Decision{Action: ActionRedirect, Target: target}
}

// match selects the most specific matching rule, or nil.
func (t *Table) match(path string) *Rule {
	var best *Rule
	for i := range t.rules {
		rule := &t.rules[i]
		if !matchesPrefix(path, rule.PathPrefix) {
			continue
		}
		if best == nil || len(rule.PathPrefix) > len(best.PathPrefix) {
			best = rule
		}
	}
	return best
}

// matchesPrefix reports whether path falls inside the prefix namespace.
// "/candidate" matches "/candidate" and "/candidate/jobs", never
// "/candidates".
func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}

func roleSet(roles ...domain.Role) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}
