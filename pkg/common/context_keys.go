package common

// Keys for values stored in fiber locals during a request.
const (
	TraceIdKey        = "trace_id"
	RouteKey          = "route"
	EnvelopeKey       = "sanitized_envelope"
	RequestContextKey = "request_context"
	UserIDKey         = "user_id"
	ClaimsKey         = "claims"
	StartTimeKey      = "start_time"
)

// Set by whichever middleware or handler answers the request itself.
const (
	RejectionCodeKey  = "rejection_code"
	RejectionStageKey = "rejection_stage"
)
