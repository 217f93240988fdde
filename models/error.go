package models

// Stable error codes surfaced to callers. Precondition violations leave state
// unchanged and must not be retried without caller-side correction; dependency
// failures leave the request pending and may be retried.
const (
	CodeInvalidTransition      = "InvalidTransition"
	CodeSessionNotActive       = "SessionNotActive"
	CodeSessionNotJoinable     = "SessionNotJoinable"
	CodeRoleConflict           = "RoleConflict"
	CodeAlreadyResolved        = "AlreadyResolved"
	CodeArbitrationUnavailable = "ArbitrationUnavailable"
	CodeIdentityUnavailable    = "IdentityUnavailable"
)

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Code    string
	Message string
	Error   string
}

// HealthCheckResponse is the response for the health check endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
