package domain

// Rsvp links one guest to one party.
// swagger:model Rsvp
type Rsvp struct {
	ID      int64 `json:"id"`
	GuestID int64 `json:"guestId"`
	EventID int64 `json:"eventId"`
}

// GuestsAttending returns the guests holding at least one rsvp for the selected party,
// in the order they appear in guests. The result is never nil.
func GuestsAttending(selected *Party, guests []Guest, rsvps []Rsvp) []Guest {
	out := []Guest{}
	if selected == nil {
		return out
	}
	for _, g := range guests {
		for _, r := range rsvps {
			if r.GuestID == g.ID && r.EventID == selected.ID {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
