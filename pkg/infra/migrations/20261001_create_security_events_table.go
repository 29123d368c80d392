package migrations

import (
	"github.com/NeuralTrust/LearnGate/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261001_create_security_events_table",
		Name: "Create security_events table for rejected requests",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS security_events (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					trace_id    TEXT NOT NULL,
					stage       TEXT NOT NULL,
					code        TEXT NOT NULL,
					status_code INTEGER NOT NULL,
					message     TEXT,
					method      TEXT,
					path        TEXT,
					route       TEXT,
					section     TEXT,
					field       TEXT,
					tier        TEXT,
					pattern     TEXT,
					value       TEXT,
					ip          TEXT,
					user_id     TEXT,
					device      TEXT,
					os          TEXT,
					browser     TEXT,
					tags        TEXT[],
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_security_events_code
				ON security_events (code);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_security_events_created_at
				ON security_events (created_at DESC);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_security_events_trace_id
				ON security_events (trace_id);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS security_events;`).Error
		},
	})
}
