package validation

import (
	"regexp"
	"strings"
	"time"

	"logbook/termbook/internal/models"
)

const maxNameLength = 100

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{4,19}$`)
)

// ValidateRelation checks the user-editable fields of a relation
// before they are sent to the server. existingNames enables the
// duplicate warning; pass the names from the current list view.
func ValidateRelation(fields models.RelationFields, existingNames []string) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}

	name := strings.TrimSpace(fields.Name)
	if name == "" {
		result.addError("name", ErrorNameRequired, "Name is required")
	} else if len(name) > maxNameLength {
		result.addError("name", ErrorNameTooLong, "Name is too long")
	}

	if !validCategory(fields.CategoryType) {
		result.addError("category", ErrorInvalidCategory, "Category must be Work, Family, Friends or Others")
	}

	if fields.EmailAddress != "" && !emailPattern.MatchString(fields.EmailAddress) {
		result.addError("email", ErrorInvalidEmail, "Email address looks invalid")
	}

	if fields.PhoneNumber != "" && !phonePattern.MatchString(fields.PhoneNumber) {
		result.addError("phone", ErrorInvalidPhone, "Phone number looks invalid")
	}

	for _, existing := range existingNames {
		if strings.EqualFold(strings.TrimSpace(existing), name) && name != "" {
			result.addWarning("name", ErrorDuplicateName, "A relation with this name already exists")
			break
		}
	}

	return result
}

// ValidateInteraction checks an interaction draft. Attachments are
// never required; only the note text is.
func ValidateInteraction(draft models.InteractionDraft) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}
	if strings.TrimSpace(draft.Content) == "" {
		result.addError("content", ErrorContentRequired, "Interaction text is required")
	}
	return result
}

// ValidateSignup checks registration input client-side. The server
// remains the authority on duplicates.
func ValidateSignup(email, password, userName string) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}

	if strings.TrimSpace(userName) == "" {
		result.addError("user_name", ErrorNameRequired, "Name is required")
	}
	if !emailPattern.MatchString(email) {
		result.addError("email", ErrorInvalidEmail, "Email address looks invalid")
	}
	if len(password) < 8 {
		result.addError("password", ErrorPasswordWeak, "Password must be at least 8 characters")
	}
	return result
}

func validCategory(category models.CategoryType) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (r *ValidationResult) addError(field string, code ErrorCode, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: ValidationSeverityError,
	})
	r.IsValid = false
}

func (r *ValidationResult) addWarning(field string, code ErrorCode, message string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: ValidationSeverityWarning,
	})
}
