package models

import (
	"strings"
	"time"
)

// CategoryType buckets a relation into one of the fixed groups the
// server understands.
type CategoryType string

const (
	CategoryWork    CategoryType = "Work"
	CategoryFamily  CategoryType = "Family"
	CategoryFriends CategoryType = "Friends"
	CategoryOthers  CategoryType = "Others"
)

// Categories lists every valid category in display order.
var Categories = []CategoryType{CategoryWork, CategoryFamily, CategoryFriends, CategoryOthers}

// ParseCategory matches a category case-insensitively, falling back to
// Others for anything unknown.
func ParseCategory(s string) CategoryType {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return CategoryOthers
}

// Relation is a tracked personal contact record. The server owns it;
// the client holds a transient copy per list view.
type Relation struct {
	ID                  string       `json:"relationship_id,omitempty"`
	UserID              string       `json:"user_id,omitempty"`
	Name                string       `json:"name"`
	CategoryType        CategoryType `json:"category_type"`
	Location            string       `json:"location,omitempty"`
	EmailAddress        string       `json:"email_address,omitempty"`
	PhoneNumber         string       `json:"phone_number,omitempty"`
	LastInteractionDate *time.Time   `json:"last_interaction_date,omitempty"`
}

// RelationFields carries the user-editable subset sent on create and
// update calls.
type RelationFields struct {
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"category_type"`
	Location     string       `json:"location,omitempty"`
	EmailAddress string       `json:"email_address,omitempty"`
	PhoneNumber  string       `json:"phone_number,omitempty"`
}
