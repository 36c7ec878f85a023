package domain

import "context"

// Resource names one of the remote collections (or the single-party endpoint).
type Resource string

const (
	ResourceParties Resource = "parties"
	ResourceParty   Resource = "party"
	ResourceRsvps   Resource = "rsvps"
	ResourceGuests  Resource = "guests"
)

// PartyGateway reads the party dataset from a remote source (or a test double).
// Implementations should report failures as *FetchError; anything else is
// treated as a network failure by callers.
type PartyGateway interface {
	ListParties(ctx context.Context) ([]Party, error)
	GetParty(ctx context.Context, id int64) (*Party, error)
	ListRsvps(ctx context.Context) ([]Rsvp, error)
	ListGuests(ctx context.Context) ([]Guest, error)
}
