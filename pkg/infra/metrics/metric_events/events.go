package metric_events

import (
	"time"

	"github.com/google/uuid"
)

const (
	StageType = "stage"
	TraceType = "trace"
)

type Event struct {
	ID         string `json:"id"`
	TraceID    string `json:"trace_id"`
	Type       string `json:"type"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	Route      string `json:"route,omitempty"`
	IP         string `json:"user_ip,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Latency    int64  `json:"latency"`
	StatusCode int    `json:"status_code"`

	// Trace Params
	Outcome string `json:"outcome,omitempty"`
	Code    string `json:"code,omitempty"`
	Locale  string `json:"locale,omitempty"`
	Device  string `json:"device,omitempty"`
	Os      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`

	// Stage Params
	Stage *StageDataEvent `json:"stage,omitempty"`
}

type StageDataEvent struct {
	StageName     string      `json:"stage_name"`
	ExecutionTime int64       `json:"execution_time_us"`
	Error         bool        `json:"error"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	Code          string      `json:"code,omitempty"`
	Finding       *Finding    `json:"finding,omitempty"`
	Extras        interface{} `json:"extras,omitempty"`
}

// Finding locates the value that made a stage reject the request.
type Finding struct {
	Section string `json:"section,omitempty"`
	Field   string `json:"field,omitempty"`
	Tier    string `json:"tier,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Value   string `json:"value,omitempty"`
}

// IsRejection reports whether the event records a stage rejecting a request.
func (e *Event) IsRejection() bool {
	return e.Type == StageType && e.Stage != nil && e.Stage.Error
}

func NewTraceEvent() *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      TraceType,
		Timestamp: time.Now().Unix(),
	}
}

func NewStageEvent() *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      StageType,
		Timestamp: time.Now().Unix(),
	}
}
