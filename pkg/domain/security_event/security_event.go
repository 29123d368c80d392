package security_event

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SecurityEvent is a persisted record of a rejected request.
type SecurityEvent struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TraceID    string         `json:"trace_id" gorm:"type:text;not null;index"`
	Stage      string         `json:"stage" gorm:"type:text;not null"`
	Code       string         `json:"code" gorm:"type:text;not null;index"`
	StatusCode int            `json:"status_code" gorm:"not null"`
	Message    string         `json:"message" gorm:"type:text"`
	Method     string         `json:"method" gorm:"type:text"`
	Path       string         `json:"path" gorm:"type:text"`
	Route      string         `json:"route" gorm:"type:text"`
	Section    string         `json:"section,omitempty" gorm:"type:text"`
	Field      string         `json:"field,omitempty" gorm:"type:text"`
	Tier       string         `json:"tier,omitempty" gorm:"type:text"`
	Pattern    string         `json:"pattern,omitempty" gorm:"type:text"`
	Value      string         `json:"value,omitempty" gorm:"type:text"`
	IP         string         `json:"ip" gorm:"type:text"`
	UserID     string         `json:"user_id,omitempty" gorm:"type:text"`
	Device     string         `json:"device,omitempty" gorm:"type:text"`
	Os         string         `json:"os,omitempty" gorm:"type:text"`
	Browser    string         `json:"browser,omitempty" gorm:"type:text"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}

func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

func (e *SecurityEvent) TableName() string {
	return "security_events"
}

// CodeCount is one row of the rejection summary.
type CodeCount struct {
	Code  string `json:"code"`
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}
