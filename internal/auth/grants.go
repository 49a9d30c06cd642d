// Package auth holds the permission model and the signed session credential.
package auth

import (
	"sort"
	"strings"

	"frota/internal/model"
)

// Resource is a guarded area of the admin API.
type Resource string

const (
	ResourceClients Resource = "Clients"
	ResourceUnits   Resource = "Units"
	ResourceRoutes  Resource = "Routes"
	ResourceRides   Resource = "Rides"
	ResourceReports Resource = "Reports"
	ResourceRoles   Resource = "Roles"
	ResourceUsers   Resource = "Users"
)

// Resources is the catalog shown on the role permission matrix, in display order.
var Resources = []Resource{
	ResourceClients,
	ResourceUnits,
	ResourceRoutes,
	ResourceRides,
	ResourceReports,
	ResourceRoles,
	ResourceUsers,
}

// ParseResource matches a resource name case-insensitively.
func ParseResource(name string) (Resource, bool) {
	for _, r := range Resources {
		if strings.EqualFold(string(r), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return "", false
}

// Action is what an operator wants to do with a resource.
type Action string

const (
	ActionView Action = "View"
	ActionEdit Action = "Edit"
)

// Token renders the "Resource:Action" form carried inside the session.
func Token(r Resource, a Action) string {
	return string(r) + ":" + string(a)
}

// GrantSet is the set of Resource:Action tokens an operator holds.
// Edit does not imply View.
type GrantSet map[string]struct{}

// GrantsFor turns a role's grant rows into the token set.
func GrantsFor(rows []model.RoleGrant) GrantSet {
	set := make(GrantSet, len(rows)*2)
	for _, g := range rows {
		if g.CanView {
			set[Token(Resource(g.ResourceName), ActionView)] = struct{}{}
		}
		if g.CanEdit {
			set[Token(Resource(g.ResourceName), ActionEdit)] = struct{}{}
		}
	}
	return set
}

// NewGrantSet rebuilds a set from tokens read back out of a credential.
func NewGrantSet(tokens []string) GrantSet {
	set := make(GrantSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether the exact (resource, action) pair is granted.
func (s GrantSet) Has(r Resource, a Action) bool {
	_, ok := s[Token(r, a)]
	return ok
}

// Tokens returns the grants sorted, for stable encoding.
func (s GrantSet) Tokens() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
