package repository

import (
	"context"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
)

type disabledRepository struct{}

// NewDisabledRepository backs the admin API when no database is configured.
func NewDisabledRepository() security_event.Repository {
	return disabledRepository{}
}

func (disabledRepository) Save(context.Context, *security_event.SecurityEvent) error {
	return security_event.ErrStorageDisabled
}

func (disabledRepository) List(context.Context, security_event.Filter) ([]security_event.SecurityEvent, int64, error) {
	return nil, 0, security_event.ErrStorageDisabled
}

func (disabledRepository) Summary(context.Context) ([]security_event.CodeCount, error) {
	return nil, security_event.ErrStorageDisabled
}
