// Package repositories provides data access for Trading Buddy resources.
// All owner-scoped queries predicate on user_id in the statement itself,
// so the ownership re-check and the mutation are a single atomic
// operation against the store.
package repositories

const (
	// DefaultListLimit applies when the client does not request a limit.
	DefaultListLimit = 50
	// MaxListLimit is the server-side clamp; larger requests return at
	// most this many rows.
	MaxListLimit = 100
)

// ListFilter carries pagination and the optional enum filters shared by
// list queries.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Type   string
}

// Normalize applies defaults and clamps the limit to MaxListLimit.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
