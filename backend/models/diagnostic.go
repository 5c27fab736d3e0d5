package models

import "time"

// Diagnostic is a persisted service log record (warnings, storage failures).
type Diagnostic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Level     string    `json:"level" gorm:"index"`
	Message   string    `json:"message"`
	Source    string    `json:"source" gorm:"index"`
	RequestID string    `json:"request_id,omitempty" gorm:"index"`
	Data      string    `json:"data"`
}
