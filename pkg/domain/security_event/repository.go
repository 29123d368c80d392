package security_event

import (
	"context"
	"errors"
)

// ErrStorageDisabled is returned by repositories of a gateway running without
// a database.
var ErrStorageDisabled = errors.New("security event storage is disabled")

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Filter selects security events. Empty fields match everything.
type Filter struct {
	Code   string
	Stage  string
	Offset int
	Limit  int
}

// Normalize clamps paging to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

type Repository interface {
	Save(ctx context.Context, evt *SecurityEvent) error
	List(ctx context.Context, filter Filter) ([]SecurityEvent, int64, error)
	Summary(ctx context.Context) ([]CodeCount, error)
}
