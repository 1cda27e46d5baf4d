package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"not null;size:120" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;size:191" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Don't expose password in JSON
	Role         string    `gorm:"not null;size:16;default:'user'" json:"role"`
	Reports      []Report  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
