package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAbstractNotFound   = errors.New("abstract not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrDuplicateReview    = errors.New("you have already reviewed this abstract")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyIDSet         = errors.New("ids array is required")
	ErrBulkTooLarge       = errors.New("too many ids in a single bulk request")
	ErrInvalidBulkAction  = errors.New("invalid bulk action")
	ErrTimeout            = errors.New("data store timed out")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationKind identifies which input rule was violated.
type ValidationKind string

const (
	KindMissingField          ValidationKind = "missing_field"
	KindInvalidField          ValidationKind = "invalid_field"
	KindInvalidTrack          ValidationKind = "invalid_track"
	KindInvalidSubcategory    ValidationKind = "invalid_subcategory"
	KindInvalidTheme          ValidationKind = "invalid_theme"
	KindMissingStructure      ValidationKind = "missing_structure"
	KindTooLong               ValidationKind = "too_long"
	KindInvalidAuthor         ValidationKind = "invalid_author"
	KindInvalidEmail          ValidationKind = "invalid_email"
	KindInvalidScore          ValidationKind = "invalid_score"
	KindInvalidRecommendation ValidationKind = "invalid_recommendation"
)

// ValidationError is returned when a client payload fails an input rule.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind ValidationKind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// ValidationKindOf returns the kind of a validation error, or "" for any other error.
func ValidationKindOf(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// storeErr wraps a data-access failure, turning deadline expiry into ErrTimeout.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
