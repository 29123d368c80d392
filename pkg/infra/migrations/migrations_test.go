package migrations_test

import (
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/infra/database"
	_ "github.com/NeuralTrust/LearnGate/pkg/infra/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_Order(t *testing.T) {
	pending := database.Pending(nil)
	require.Len(t, pending, 2)
	assert.Equal(t, "20261001_create_security_events_table", pending[0].ID)
	assert.Equal(t, "20261002_add_security_events_tags_index", pending[1].ID)
	for _, m := range pending {
		assert.NotNil(t, m.Up, m.ID)
		assert.NotNil(t, m.Down, m.ID)
	}
}

func TestPending_SkipsApplied(t *testing.T) {
	pending := database.Pending(map[string]struct{}{
		"20261001_create_security_events_table": {},
	})
	require.Len(t, pending, 1)
	assert.Equal(t, "20261002_add_security_events_tags_index", pending[0].ID)
}

func TestRegisterMigration_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		database.RegisterMigration(database.Migration{ID: "20261001_create_security_events_table"})
	})
}
