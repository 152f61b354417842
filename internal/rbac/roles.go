package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a named permission group. A user may hold several.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleOrganizer      Role = "ORGANIZER"
	RolePanelEvaluator Role = "PANEL_EVALUATOR"
	RoleAuthor         Role = "AUTHOR"
	RoleParticipant    Role = "PARTICIPANT"
)

// ErrUnknownRole is returned when a label is not part of the role set
var ErrUnknownRole = errors.New("unknown role")

// priority lists every role from highest to lowest precedence.
var priority = []Role{
	RoleAdmin,
	RoleOrganizer,
	RolePanelEvaluator,
	RoleAuthor,
	RoleParticipant,
}

// AllRoles returns the closed role set in priority order
func AllRoles() []Role {
	out := make([]Role, len(priority))
	copy(out, priority)
	return out
}

// Valid reports whether r belongs to the role set
func (r Role) Valid() bool {
	for _, p := range priority {
		if r == p {
			return true
		}
	}
	return false
}

// String returns the role label
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a label into a Role, ignoring case and surrounding space
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// FromStrings converts claim labels into roles. Unknown labels are dropped.
func FromStrings(labels []string) []Role {
	roles := make([]Role, 0, len(labels))
	for _, label := range labels {
		if r, err := ParseRole(label); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

// Strings converts roles into their labels
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// HasAnyRole reports whether held and permitted intersect.
// An empty permitted set admits nobody.
func HasAnyRole(held, permitted []Role) bool {
	for _, want := range permitted {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Normalize deduplicates roles and orders them by priority. Unknown roles are dropped.
func Normalize(roles []Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, p := range priority {
		for _, r := range roles {
			if r == p {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
