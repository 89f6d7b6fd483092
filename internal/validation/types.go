package validation

import "time"

// ValidationSeverity distinguishes blocking errors from advisory
// warnings.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// ErrorCode identifies a specific validation failure.
type ErrorCode string

const (
	ErrorNameRequired    ErrorCode = "name_required"
	ErrorNameTooLong     ErrorCode = "name_too_long"
	ErrorInvalidCategory ErrorCode = "invalid_category"
	ErrorInvalidEmail    ErrorCode = "invalid_email"
	ErrorInvalidPhone    ErrorCode = "invalid_phone"
	ErrorDuplicateName   ErrorCode = "duplicate_name"
	ErrorContentRequired ErrorCode = "content_required"
	ErrorPasswordWeak    ErrorCode = "password_weak"
)

// ValidationError describes one failed check.
type ValidationError struct {
	Field    string
	Code     ErrorCode
	Message  string
	Severity ValidationSeverity
}

// ValidationResult aggregates all checks for one submission.
type ValidationResult struct {
	IsValid     bool
	Errors      []ValidationError
	Warnings    []ValidationError
	ValidatedAt time.Time
}

// FieldError returns the first blocking message for a field, or "".
func (r ValidationResult) FieldError(field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}
