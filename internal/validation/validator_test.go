package validation

import (
	"strings"
	"testing"

	"logbook/termbook/internal/models"
)

func TestValidateRelationValid(t *testing.T) {
	fields := models.RelationFields{
		Name:         "Alice",
		CategoryType: models.CategoryFriends,
		EmailAddress: "alice@example.com",
		PhoneNumber:  "+44 29 2018 0000",
	}

	result := ValidateRelation(fields, nil)
	if !result.IsValid {
		t.Errorf("Expected valid relation, got errors: %v", result.Errors)
	}
}

func TestValidateRelationNameRequired(t *testing.T) {
	result := ValidateRelation(models.RelationFields{Name: "   ", CategoryType: models.CategoryWork}, nil)

	if result.IsValid {
		t.Error("Expected blank name to fail")
	}
	if result.FieldError("name") == "" {
		t.Error("Expected a name field error")
	}
}

func TestValidateRelationNameTooLong(t *testing.T) {
	fields := models.RelationFields{
		Name:         strings.Repeat("a", 101),
		CategoryType: models.CategoryWork,
	}
	result := ValidateRelation(fields, nil)

	if result.IsValid {
		t.Error("Expected overlong name to fail")
	}
}

func TestValidateRelationBadCategory(t *testing.T) {
	result := ValidateRelation(models.RelationFields{Name: "Alice", CategoryType: "Enemies"}, nil)

	if result.IsValid {
		t.Error("Expected unknown category to fail")
	}
}

func TestValidateRelationBadEmail(t *testing.T) {
	fields := models.RelationFields{
		Name:         "Alice",
		CategoryType: models.CategoryWork,
		EmailAddress: "not-an-email",
	}
	if result := ValidateRelation(fields, nil); result.IsValid {
		t.Error("Expected invalid email to fail")
	}
}

func TestValidateRelationOptionalFieldsEmpty(t *testing.T) {
	fields := models.RelationFields{Name: "Alice", CategoryType: models.CategoryWork}

	if result := ValidateRelation(fields, nil); !result.IsValid {
		t.Errorf("Expected empty optional fields to pass, got %v", result.Errors)
	}
}

func TestValidateRelationDuplicateIsWarningOnly(t *testing.T) {
	fields := models.RelationFields{Name: "Alice", CategoryType: models.CategoryWork}
	result := ValidateRelation(fields, []string{"alice", "Bob"})

	// Duplicates warn; the server stays the authority on rejecting them.
	if !result.IsValid {
		t.Error("Expected duplicate name to remain valid")
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Expected one duplicate warning, got %d", len(result.Warnings))
	}
}

func TestValidateInteraction(t *testing.T) {
	if result := ValidateInteraction(models.InteractionDraft{Content: "had lunch"}); !result.IsValid {
		t.Errorf("Expected valid interaction, got %v", result.Errors)
	}
	if result := ValidateInteraction(models.InteractionDraft{Content: "  \n "}); result.IsValid {
		t.Error("Expected blank interaction to fail")
	}
}

func TestValidateInteractionAttachmentsOptional(t *testing.T) {
	draft := models.InteractionDraft{
		Content:     "with photo",
		Attachments: []models.Attachment{{Filename: "a.png", Reader: strings.NewReader("x")}},
	}
	if result := ValidateInteraction(draft); !result.IsValid {
		t.Errorf("Expected interaction with attachments to pass, got %v", result.Errors)
	}
}

func TestValidateSignup(t *testing.T) {
	if result := ValidateSignup("a@b.com", "longenough", "Rhys"); !result.IsValid {
		t.Errorf("Expected valid signup, got %v", result.Errors)
	}

	if result := ValidateSignup("bad-email", "longenough", "Rhys"); result.IsValid {
		t.Error("Expected invalid email to fail")
	}
	if result := ValidateSignup("a@b.com", "short", "Rhys"); result.IsValid {
		t.Error("Expected short password to fail")
	}
	if result := ValidateSignup("a@b.com", "longenough", ""); result.IsValid {
		t.Error("Expected missing name to fail")
	}
}

func TestFieldError(t *testing.T) {
	result := ValidateSignup("bad", "short", "")

	if result.FieldError("password") == "" {
		t.Error("Expected a password error message")
	}
	if result.FieldError("nonexistent") != "" {
		t.Error("Expected empty message for unknown field")
	}
}
