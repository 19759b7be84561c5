package entity

import (
	"fmt"
	"strings"
)

// DomainError is implemented by every recoverable error the core
// returns. The boundary surfaces these as structured responses with a
// stable code and human-readable help text, never as opaque failures.
type DomainError interface {
	error
	ErrorCode() string
	Help() string
}

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Code    string
	Message string
	Advice  string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

func (e *ValidationError) ErrorCode() string { return e.Code }
func (e *ValidationError) Help() string      { return e.Advice }

// NewMissingFieldsError reports absent required fields.
func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{
		Code:    "MISSING_REQUIRED_FIELDS",
		Message: "Required fields are missing",
		Advice:  "Please provide all required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// NewInvalidDateRangeError reports a journey date after the return date.
func NewInvalidDateRangeError() *ValidationError {
	return &ValidationError{
		Code:    "INVALID_DATE_RANGE",
		Message: "Journey date cannot be after return date",
		Advice:  "Please ensure the journey date is before or equal to the return date",
	}
}

// ZeroAmountError reports a claim whose itemized amounts sum to zero.
type ZeroAmountError struct {
	TrainFare float64
	HotelFare float64
	FoodCost  float64
}

func (e *ZeroAmountError) Error() string {
	return "total expense amount cannot be zero"
}

func (e *ZeroAmountError) ErrorCode() string { return "ZERO_EXPENSE_AMOUNT" }
func (e *ZeroAmountError) Help() string {
	return "Please provide at least one non-zero expense amount"
}

// OverlapError reports a date window colliding with the owner's other
// non-rejected claims. ConflictIDs names the colliding claims.
type OverlapError struct {
	ConflictIDs []int64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("date range overlaps with existing claims %v", e.ConflictIDs)
}

func (e *OverlapError) ErrorCode() string { return "OVERLAPPING_DATES" }
func (e *OverlapError) Help() string {
	return "Please choose a different date range that does not overlap with existing expenses"
}

// InvalidTransitionError reports a review attempted against the wrong
// current status. Losers of a concurrent review race receive this.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move claim from %q to %q", e.Current, e.Requested)
}

func (e *InvalidTransitionError) ErrorCode() string { return "INVALID_TRANSITION" }
func (e *InvalidTransitionError) Help() string {
	return "The claim is not in the status required for this review stage"
}

// NotAuthorizedError reports a role or department mismatch.
type NotAuthorizedError struct {
	Reason string
}

func (e *NotAuthorizedError) Error() string { return e.Reason }

func (e *NotAuthorizedError) ErrorCode() string { return "NOT_AUTHORIZED" }
func (e *NotAuthorizedError) Help() string {
	return "You do not have permission to perform this action on this claim"
}

// NotFoundError reports an unknown claim, user, or file reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) ErrorCode() string { return "NOT_FOUND" }
func (e *NotFoundError) Help() string {
	return "Please verify the identifier and try again"
}
