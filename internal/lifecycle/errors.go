package lifecycle

import (
	"errors"
	"fmt"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input validation
	CodeValidation    Code = "VALIDATION_FAILED"
	CodeInvalidScore  Code = "INVALID_SCORE"
	CodeInvalidWindow Code = "INVALID_WINDOW"

	// State conflicts
	CodeDuplicateParticipation Code = "DUPLICATE_PARTICIPATION"
	CodeAlreadyReviewed        Code = "ALREADY_REVIEWED"
	CodeAlreadySubmitted       Code = "ALREADY_SUBMITTED"
	CodeAlreadyFinalized       Code = "ALREADY_FINALIZED"
	CodePositionConflict       Code = "POSITION_CONFLICT"

	// Window / eligibility
	CodeCampaignClosed         Code = "CAMPAIGN_CLOSED"
	CodeSubmissionWindowClosed Code = "SUBMISSION_WINDOW_CLOSED"
	CodeNotApproved            Code = "NOT_APPROVED"

	CodeForbidden Code = "FORBIDDEN"
	CodeNotFound  Code = "NOT_FOUND"
)

// Kind groups codes by how a caller should react.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindEligibility Kind = "eligibility"
	KindPermission  Kind = "permission"
	KindNotFound    Kind = "not_found"
)

var codeKinds = map[Code]Kind{
	CodeValidation:             KindValidation,
	CodeInvalidScore:           KindValidation,
	CodeInvalidWindow:          KindValidation,
	CodeDuplicateParticipation: KindConflict,
	CodeAlreadyReviewed:        KindConflict,
	CodeAlreadySubmitted:       KindConflict,
	CodeAlreadyFinalized:       KindConflict,
	CodePositionConflict:       KindConflict,
	CodeCampaignClosed:         KindEligibility,
	CodeSubmissionWindowClosed: KindEligibility,
	CodeNotApproved:            KindEligibility,
	CodeForbidden:              KindPermission,
	CodeNotFound:               KindNotFound,
}

// Error is a coded lifecycle error. Two errors match under errors.Is when
// their codes are equal, so the sentinels below can be used as targets.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	// Issues lists every blocking timeline violation behind a failed save
	Issues []models.TimelineIssue
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Kind returns the taxonomy group of the error.
func (e *Error) Kind() Kind {
	return codeKinds[e.Code]
}

var (
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrInvalidScore  = &Error{Code: CodeInvalidScore, Message: "score must be between 0 and 100"}
	ErrInvalidWindow = &Error{Code: CodeInvalidWindow, Message: "invalid time window"}

	ErrDuplicateParticipation = &Error{Code: CodeDuplicateParticipation, Message: "participation already exists for this campaign"}
	ErrAlreadyReviewed        = &Error{Code: CodeAlreadyReviewed, Message: "participation has already been reviewed"}
	ErrAlreadySubmitted       = &Error{Code: CodeAlreadySubmitted, Message: "project has already been submitted"}
	ErrAlreadyFinalized       = &Error{Code: CodeAlreadyFinalized, Message: "submission result is already final"}
	ErrPositionConflict       = &Error{Code: CodePositionConflict, Message: "position is already held by another submission"}

	ErrCampaignClosed         = &Error{Code: CodeCampaignClosed, Message: "campaign is not open for registration"}
	ErrSubmissionWindowClosed = &Error{Code: CodeSubmissionWindowClosed, Message: "submission window is closed"}
	ErrNotApproved            = &Error{Code: CodeNotApproved, Message: "participation is not approved"}

	ErrForbidden = &Error{Code: CodeForbidden, Message: "actor is not allowed to perform this action"}
	ErrNotFound  = &Error{Code: CodeNotFound, Message: "record not found"}
)

// NewError builds a coded error with a specific message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// validationError builds a validation error carrying per-field messages.
func validationError(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// KindOf returns the Kind of a lifecycle error anywhere in err's chain, or
// the empty Kind for infrastructure errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind()
	}
	return ""
}
