// Package ingest builds the consolidated mapper document from the osu! API.
package ingest

import "strings"

// Gate decides which identities belong in the catalog.
type Gate struct {
	TargetCountry string
	allowOrder    []string
	allow         map[string]struct{}
	deny          map[string]struct{}
}

// NewGate builds a gate for country with the given allow and deny lists.
func NewGate(country string, allow, deny []string) Gate {
	g := Gate{
		TargetCountry: strings.ToUpper(strings.TrimSpace(country)),
		allow:         make(map[string]struct{}, len(allow)),
		deny:          make(map[string]struct{}, len(deny)),
	}
	for _, id := range allow {
		id = strings.TrimSpace(id)
		if _, dup := g.allow[id]; dup || id == "" {
			continue
		}
		g.allow[id] = struct{}{}
		g.allowOrder = append(g.allowOrder, id)
	}
	for _, id := range deny {
		g.deny[strings.TrimSpace(id)] = struct{}{}
	}
	return g
}

// AllowList returns the allow-listed ids in configured order.
func (g Gate) AllowList() []string { return g.allowOrder }

// Denied reports whether userID is on the deny list.
func (g Gate) Denied(userID string) bool {
	_, ok := g.deny[userID]
	return ok
}

// Allowed reports whether userID is on the allow list.
func (g Gate) Allowed(userID string) bool {
	_, ok := g.allow[userID]
	return ok
}

// Include reports whether a user with the given id and country is
// catalogued. The deny list always wins; otherwise the country must match
// or the id must be allow-listed.
func (g Gate) Include(userID, country string) bool {
	if g.Denied(userID) {
		return false
	}
	if g.TargetCountry != "" && strings.EqualFold(country, g.TargetCountry) {
		return true
	}
	return g.Allowed(userID)
}
