package models

import (
	"time"
)

// ReportImage is a photo attached to a report. FilePath is the storage
// location handed back by the configured storage backend.
type ReportImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Filename  string    `gorm:"not null;size:255" json:"filename"`
	FilePath  string    `gorm:"not null;size:512" json:"file_path"`
	ReportID  uint      `gorm:"not null;index" json:"report_id"`
}
