package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run outcomes.
const (
	RunSuccess = "success"
	RunEmpty   = "empty"
	RunError   = "error"
)

// ReportRun logs one report load. Payloads are never stored.
type ReportRun struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Report     string    `gorm:"size:100;index;not null"`
	Params     string    `gorm:"size:1000"` // encoded query string
	User       string    `gorm:"size:255"`
	Status     string    `gorm:"size:20;not null"`
	Rows       int       `gorm:"not null;default:0"`
	Cached     bool      `gorm:"not null;default:false"`
	DurationMS int64     `gorm:"not null;default:0"`
	Error      string    `gorm:"size:1000"`
	CreatedAt  time.Time `gorm:"index"`
}

// BeforeCreate assigns a uuid when none is set.
func (r *ReportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Duration returns the recorded load time, shown on the dashboard.
func (r ReportRun) Duration() time.Duration { return time.Duration(r.DurationMS) * time.Millisecond }
