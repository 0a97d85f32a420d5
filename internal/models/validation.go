package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes surfaced by the conflict checker.
const (
	IssueMissingReference   = "MISSING_REFERENCE"
	IssueInvalidTimeRange   = "INVALID_TIME_RANGE"
	IssueSlotMismatch       = "SLOT_MISMATCH"
	IssueNonWorkingDay      = "NON_WORKING_DAY"
	IssueRoomRequired       = "ROOM_REQUIRED"
	IssueRoomCapacity       = "ROOM_CAPACITY"
	IssueRoomNotAllowed     = "ROOM_NOT_ALLOWED"
	IssueBuildingNotAllowed = "BUILDING_NOT_ALLOWED"
	IssueConflictPublished  = "CONFLICT_PUBLISHED"
	IssueConflictDraft      = "CONFLICT_DRAFT"
	IssueTravelTime         = "TRAVEL_TIME"
	IssueOutsideWorkHours   = "OUTSIDE_WORKING_HOURS"
	IssueTeacherMissing     = "TEACHER_MISSING"
	IssueTeacherNotLinked   = "TEACHER_NOT_LINKED"
)

// ValidationIssue is one finding of the conflict checker.
type ValidationIssue struct {
	Severity    Severity `json:"severity"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// ValidationReport is the payload stored on drafts and returned to the UI.
type ValidationReport struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Issues      []ValidationIssue `json:"issues"`
}

// JSON encodes the report for the validation_warnings column.
func (r ValidationReport) JSON() types.JSONText {
	if r.Issues == nil {
		r.Issues = []ValidationIssue{}
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return types.JSONText("{}")
	}
	return types.JSONText(payload)
}

// ValidationResult carries the outcome of a validation pass.
type ValidationResult struct {
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Report   *ValidationReport `json:"report,omitempty"`
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// ValidationFailure is wrapped into a VALIDATION_ERROR when a write is blocked.
type ValidationFailure struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

func (f *ValidationFailure) Error() string {
	if f == nil || len(f.Errors) == 0 {
		return "validation failed"
	}
	return f.Errors[0]
}
