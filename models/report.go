package models

import (
	"time"
)

const (
	StatusPending       = "pending"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
	StatusRejected      = "rejected"
)

// Statuses lists every report status in workflow order.
var Statuses = []string{StatusPending, StatusInvestigating, StatusResolved, StatusRejected}

type Report struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Title       string        `gorm:"not null;size:200" json:"title"`
	Description string        `gorm:"not null;type:text" json:"description"`
	Type        string        `gorm:"not null;size:50;index" json:"type"`
	Status      string        `gorm:"not null;size:20;default:'pending';index" json:"status"` // pending, investigating, resolved, rejected
	Latitude    *float64      `json:"latitude"`
	Longitude   *float64      `json:"longitude"`
	Address     *string       `gorm:"size:255" json:"address"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	Images      []ReportImage `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"images"`
}

// ValidStatus reports whether status is one of the four report statuses.
func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
