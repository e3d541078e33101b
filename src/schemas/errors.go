package schemas

import (
	"fmt"
	"net/http"
)

// ErrorResponse represents a standard API error (RFC 7807).
// It implements the standard Go error interface.
type ErrorResponse struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"` // HTTP Status Code
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Error implements the error interface.
// This allows ErrorResponse to be returned as a standard Go error.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// NewErrorResponse creates a general ErrorResponse.
func NewErrorResponse(status int, title, detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     fmt.Sprintf("https://breaktime-service.com/errors/%d", status),
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// --- Helper Constructors for Common HTTP Errors ---

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, "Bad Request", detail, instance)
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, "Not Found", detail, instance)
}

// NewConflictError creates a 409 Conflict error.
func NewConflictError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, "Conflict", detail, instance)
}

// NewInternalError creates a 500 Internal Server Error.
// Note: Be careful not to expose sensitive technical details in production.
func NewInternalError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", detail, instance)
}

// --- Domain-Specific Error Constructors ---

// AlreadyOnBreakConflict creates a 409 Conflict for a start request while
// a break is already open. The detail names the active type so the caller
// can report it back to the user.
func AlreadyOnBreakConflict(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://breaktime-service.com/already-on-break",
		Title:    "Already On Break",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	}
}

// BreakTypeMismatchConflict creates a 409 Conflict for an end request
// whose type does not match the open session.
func BreakTypeMismatchConflict(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://breaktime-service.com/break-type-mismatch",
		Title:    "Break Type Mismatch",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	}
}

// NoActiveBreakConflict creates a 409 Conflict for an end request when no
// break is open.
func NoActiveBreakConflict(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://breaktime-service.com/no-active-break",
		Title:    "No Active Break",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	}
}

// ReasonRequiredError creates a 422 for a break type whose reason is
// mandatory. Nothing is logged until the reason arrives.
func ReasonRequiredError(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://breaktime-service.com/reason-required",
		Title:    "Reason Required",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
	}
}
