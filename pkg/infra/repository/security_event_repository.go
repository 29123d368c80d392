package repository

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"gorm.io/gorm"
)

type securityEventRepository struct {
	db *gorm.DB
}

func NewSecurityEventRepository(db *gorm.DB) security_event.Repository {
	return &securityEventRepository{
		db: db,
	}
}

func (r *securityEventRepository) Save(ctx context.Context, evt *security_event.SecurityEvent) error {
	if err := r.db.WithContext(ctx).Create(evt).Error; err != nil {
		return fmt.Errorf("failed to save security event: %w", err)
	}
	return nil
}

func (r *securityEventRepository) List(
	ctx context.Context,
	filter security_event.Filter,
) ([]security_event.SecurityEvent, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := ApplyFilter(r.db.WithContext(ctx).Model(&security_event.SecurityEvent{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count security events: %w", err)
	}

	var events []security_event.SecurityEvent
	if err := ApplyFilter(r.db.WithContext(ctx), filter).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list security events: %w", err)
	}
	return events, total, nil
}

func (r *securityEventRepository) Summary(ctx context.Context) ([]security_event.CodeCount, error) {
	var rows []security_event.CodeCount
	if err := r.db.WithContext(ctx).
		Model(&security_event.SecurityEvent{}).
		Select("code, stage, COUNT(*) AS count").
		Group("code, stage").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize security events: %w", err)
	}
	return rows, nil
}

// ApplyFilter adds the WHERE clauses for the non-empty filter fields.
func ApplyFilter(q *gorm.DB, filter security_event.Filter) *gorm.DB {
	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Stage != "" {
		q = q.Where("stage = ?", filter.Stage)
	}
	return q
}
