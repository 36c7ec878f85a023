package domain

import "strconv"

// Party is an event as served by the remote /events collection.
// Nullable scalars are pointers; the remote API omits or nulls them freely.
// swagger:model Party
type Party struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	CohortID    *int64  `json:"cohortId,omitempty"`
}

// Label returns the party name, or "(Untitled: <id>)" when the name is missing or empty.
func (p Party) Label() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return "(Untitled: " + strconv.FormatInt(p.ID, 10) + ")"
}

// Str dereferences an optional string, returning "" for nil.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
