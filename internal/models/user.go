// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

// Role is the closed set of capabilities a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a stored or submitted value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanModerate reports whether the role may mutate content it does not own.
func (r Role) CanModerate() bool {
	return r == RoleAdmin
}

// User represents an account on the platform.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Role           Role      `gorm:"size:16;not null;default:user" json:"role"`
	Bio            string    `gorm:"size:280" json:"bio"`
	ProfileImageID *uint     `json:"profile_image_id,omitempty"`
	SignUpDate     time.Time `gorm:"not null;index" json:"sign_up_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.CanModerate()
}
