package models

import "time"

// University is a destination institution, optionally a partner.
type University struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Website   string    `json:"website,omitempty"`
	IsPartner bool      `json:"isPartner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
