// Package validation holds the field-level checks used by the application
// wizard and the review workers, plus payload validation for imported drafts.
package validation

import (
	"regexp"
	"strings"
	"time"

	"admission-portal/internal/common/errors"
)

// Field error codes.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeUnderage        = "UNDERAGE"
	CodeInvalidInput    = "INVALID_INPUT"
)

// DateLayout is the wire format of every date field on the form.
const DateLayout = "2006-01-02"

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9\s\-\(\)]+$`)
	nameRegex  = regexp.MustCompile(`^[\p{L}\s'\-]+$`)
)

// Result accumulates field errors for one validation pass.
type Result struct {
	Errors []errors.FieldError
}

func (r *Result) Add(field, code, message string) {
	r.Errors = append(r.Errors, errors.FieldError{Field: field, Code: code, Message: message})
}

// Require records a MISSING_REQUIRED error when value is blank and reports
// whether the value was present.
func (r *Result) Require(field, label, value string) bool {
	if strings.TrimSpace(value) == "" {
		r.Add(field, CodeMissingRequired, label+" is required")
		return false
	}
	return true
}

func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) HasErrors(field string) bool {
	return len(r.GetErrorsForField(field)) > 0
}

func (r *Result) GetErrorsForField(field string) []errors.FieldError {
	var out []errors.FieldError
	for _, e := range r.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

func (r *Result) GetErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ValidatePhone accepts digits, spaces, dashes, parentheses and a leading plus.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(phone))
}

// ValidatePersonName accepts letters, spaces, apostrophes and hyphens.
func ValidatePersonName(name string) bool {
	return nameRegex.MatchString(strings.TrimSpace(name))
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func ParseDate(value string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeOn returns the number of whole years between dob and now.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
