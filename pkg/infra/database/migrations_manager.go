package database

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

var registry = make(map[string]Migration)

// RegisterMigration is called from init functions of the migrations
// package. Duplicate IDs panic at startup.
func RegisterMigration(m Migration) {
	if _, exists := registry[m.ID]; exists {
		panic(fmt.Sprintf("migration with ID %s already registered", m.ID))
	}
	registry[m.ID] = m
}

// Pending returns the registered migrations missing from applied, in ID
// order. IDs start with their date so lexical order is creation order.
func Pending(applied map[string]struct{}) []Migration {
	out := make([]Migration, 0, len(registry))
	for id, m := range registry {
		if _, ok := applied[id]; !ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// appliedMigration is one row of the bookkeeping table.
type appliedMigration struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (appliedMigration) TableName() string {
	return "learngate_migrations"
}

type MigrationsManager struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewMigrationsManager(db *gorm.DB, logger *logrus.Logger) *MigrationsManager {
	return &MigrationsManager{db: db, logger: logger}
}

func (m *MigrationsManager) applied() (map[string]struct{}, error) {
	if err := m.db.AutoMigrate(&appliedMigration{}); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}
	var ids []string
	if err := m.db.Model(&appliedMigration{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ApplyPending runs every pending migration in its own transaction together
// with its bookkeeping row.
func (m *MigrationsManager) ApplyPending() error {
	applied, err := m.applied()
	if err != nil {
		return err
	}

	for _, mig := range Pending(applied) {
		if mig.Up == nil {
			return fmt.Errorf("migration %s has no Up function", mig.ID)
		}
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Create(&appliedMigration{
				ID:        mig.ID,
				Name:      mig.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s (%s): %w", mig.ID, mig.Name, err)
		}
		m.logger.WithFields(logrus.Fields{
			"id":   mig.ID,
			"name": mig.Name,
		}).Info("migration applied")
	}
	return nil
}
