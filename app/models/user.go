package models

import "time"

// User is an account allowed to sign in to the back office.
type User struct {
	ID        uint      `gorm:"primaryKey"                     json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100;not null"  json:"username"`
	Password  string    `gorm:"size:255;not null"              json:"-"` // bcrypt hash, never serialised
	Type      string    `gorm:"size:50;not null;default:staff" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User types.
const (
	TypeAdmin = "admin"
	TypeStaff = "staff"
)
