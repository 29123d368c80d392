package migrations

import (
	"github.com/NeuralTrust/LearnGate/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261002_add_security_events_tags_index",
		Name: "Index security event tags for containment queries",

		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_security_events_tags
				ON security_events USING GIN (tags);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP INDEX IF EXISTS idx_security_events_tags;`).Error
		},
	})
}
