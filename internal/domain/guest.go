package domain

// Guest is a person who may attend parties.
// swagger:model Guest
type Guest struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
	Job   *string `json:"job,omitempty"`
}
