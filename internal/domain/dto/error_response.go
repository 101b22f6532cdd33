package dto

import "time"

// ErrorResponse is the standardized JSON error body of the API.
type ErrorResponse struct {
	Message      string    `json:"message"`                 // Human-readable error summary
	ErrorDetails string    `json:"error_details,omitempty"` // Underlying error text, if any
	Timestamp    time.Time `json:"timestamp"`               // Time the error response was created
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
