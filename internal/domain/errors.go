package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrValidation            = errors.New("validation failed")
	ErrReportLocked          = errors.New("report is completed and can no longer be changed")
	ErrReferentialIntegrity  = errors.New("referential integrity violation")
	ErrUploadFailed          = errors.New("photo upload failed")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Violation is one unmet lifecycle condition.
type Violation struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	ItemIDs []string `json:"item_ids,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

const (
	ViolationUnansweredItems    = "UNANSWERED_ITEMS"
	ViolationIncompleteActions  = "INCOMPLETE_ACTION_PLAN"
	ViolationMissingSignature   = "MISSING_SIGNATURE"
	ViolationUnknownItem        = "UNKNOWN_ITEM"
	ViolationDuplicateItem      = "DUPLICATE_ITEM"
	ViolationMissingCatalogItem = "MISSING_ITEM"
)

// ValidationError carries every violated condition, never only the first.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialIntegrityError blocks deletion of a project that still owns reports.
type ReferentialIntegrityError struct {
	ProjectID   string
	ReportCount int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("obra possui %d relatório(s) vinculado(s)", e.ReportCount)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

func validationFailure(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
