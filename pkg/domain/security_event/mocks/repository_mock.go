package mocks

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) Save(ctx context.Context, evt *security_event.SecurityEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *Repository) List(ctx context.Context, filter security_event.Filter) ([]security_event.SecurityEvent, int64, error) {
	args := m.Called(ctx, filter)
	events, ok := args.Get(0).([]security_event.SecurityEvent)
	if !ok && args.Get(0) != nil {
		return nil, 0, fmt.Errorf("expected []security_event.SecurityEvent, got %T", args.Get(0))
	}
	return events, args.Get(1).(int64), args.Error(2)
}

func (m *Repository) Summary(ctx context.Context) ([]security_event.CodeCount, error) {
	args := m.Called(ctx)
	counts, ok := args.Get(0).([]security_event.CodeCount)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected []security_event.CodeCount, got %T", args.Get(0))
	}
	return counts, args.Error(1)
}
