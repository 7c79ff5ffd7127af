package events

import "errors"

// ErrorCategory classifies a failure at the point where it happens.
// Consumers attach a category to errors they return so the bus and the
// compensator can act on it without inspecting error text or types.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryForbidden  ErrorCategory = "forbidden"
	CategoryStorage    ErrorCategory = "storage"
	CategoryPublish    ErrorCategory = "publish"
	CategoryUnknown    ErrorCategory = "unknown"
)

// CategorizedError wraps an error with its classification.
type CategorizedError struct {
	Category ErrorCategory
	Err      error
}

func (e *CategorizedError) Error() string {
	return string(e.Category) + ": " + e.Err.Error()
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// Categorize wraps err with the given category. A nil err returns nil.
func Categorize(category ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{Category: category, Err: err}
}

// CategoryOf returns the classification carried by err, or CategoryUnknown
// if err was never categorized.
func CategoryOf(err error) ErrorCategory {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategoryUnknown
}
