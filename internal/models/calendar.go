package models

import "time"

// CalendarEvent mirrors the event shape the calendar endpoints accept
// and return. Event extraction happens server-side.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// DailyInteraction is the per-entry shape the daily digest endpoint
// expects.
type DailyInteraction struct {
	Content          string `json:"content"`
	Date             string `json:"date"`
	RelationName     string `json:"relationName"`
	RelationCategory string `json:"relationCategory,omitempty"`
}
