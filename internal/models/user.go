package models

import (
	"time"

	"github.com/noah-isme/overseas-crm/internal/access"
)

// User is a staff account stored in the users collection.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	Role         access.Role `json:"role"`
	Phone        string      `json:"phone,omitempty"`
	Department   string      `json:"department,omitempty"`
	IsActive     bool        `json:"isActive"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Identity is the signed-in user as seen by the rest of the application. It
// has no password field.
type Identity struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       access.Role `json:"role"`
	Phone      string      `json:"phone,omitempty"`
	Department string      `json:"department,omitempty"`
	IsActive   bool        `json:"isActive"`
	LastLogin  *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Identity strips the secret fields from u.
func (u User) Identity() Identity {
	return Identity{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Phone:      u.Phone,
		Department: u.Department,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role   *access.Role
	Active *bool
	Search string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
