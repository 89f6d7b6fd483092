package models

import (
	"io"
	"time"
)

// Interaction is a timestamped note logged against a relation. Every
// interaction belongs to exactly one relation.
type Interaction struct {
	ID         string    `json:"log_id"`
	RelationID string    `json:"relationship_id"`
	Content    string    `json:"content"`
	Date       time.Time `json:"date"`
	IsPinned   bool      `json:"is_pinned,omitempty"`
}

// Attachment is an opaque file reference uploaded alongside an
// interaction. The server stores the bytes; the client never
// interprets them.
type Attachment struct {
	Filename string
	Reader   io.Reader
}

// InteractionDraft is the client-side input for creating an
// interaction. Attachments may be empty, which selects the JSON wire
// encoding instead of multipart.
type InteractionDraft struct {
	Content     string
	Attachments []Attachment
}
