package model

import (
	"math"
	"time"
)

// WorkLogEntry is the immutable summary of a completed session.
type WorkLogEntry struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	EmployeeName    string    `json:"employee_name"`
	Date            string    `json:"date"`
	DurationSeconds int64     `json:"duration_seconds"`
	Duration        string    `json:"duration"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Blockers        *string   `json:"blockers"`
}

// WorkHours returns the duration in hours rounded to two decimals.
func (e WorkLogEntry) WorkHours() float64 {
	return math.Round(float64(e.DurationSeconds)/36) / 100
}
