package audit

import "time"

// Action is the kind of local activity being recorded.
type Action string

const (
	ActionLogin             Action = "login"
	ActionSignup            Action = "signup"
	ActionLogout            Action = "logout"
	ActionRelationCreate    Action = "relation_create"
	ActionRelationUpdate    Action = "relation_update"
	ActionRelationDelete    Action = "relation_delete"
	ActionInteractionCreate Action = "interaction_create"
	ActionInteractionUpdate Action = "interaction_update"
	ActionInteractionDelete Action = "interaction_delete"
	ActionExport            Action = "export"
	ActionImport            Action = "import"
	ActionCalendarConnect   Action = "calendar_connect"
)

// Entry is one line of the local activity log. Never contains note
// content or credentials, only identifiers.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	UserID     string    `json:"user_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
