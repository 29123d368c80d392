package types

const (
	CodeSecurityViolation    = "SECURITY_VIOLATION"
	CodeFileValidationFailed = "FILE_VALIDATION_FAILED"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
	CodeTooManyParameters    = "TOO_MANY_PARAMETERS"
	CodeHeadersTooLarge      = "HEADERS_TOO_LARGE"

	CodeMalformedBody       = "MALFORMED_BODY"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeStorageDisabled     = "STORAGE_DISABLED"
)

// ErrorResponse is the JSON body of every error the gateway returns itself.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewErrorResponse(message, code string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message, Code: code}
}

// StageError rejects a request. It carries the HTTP status and the machine
// readable code returned to the caller.
type StageError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *StageError) Error() string {
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}
