package common

import "time"

const (
	TraceIDHeader = "X-Trace-Id"

	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"

	DefaultUpstreamTimeout = 30 * time.Second
	BreakerTimeout         = 30 * time.Second
	ExporterTimeout        = 5 * time.Second
)
