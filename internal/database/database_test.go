package database

import (
	"testing"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	db, err := Open("file:"+t.Name()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"profiles", "projects", "milestones", "milestone_notes", "status_updates", "preferences", "activities"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn(&models.Milestone{}, "legacy_notes"))
	assert.True(t, db.Migrator().HasColumn(&models.StatusUpdate{}, "status_type"))
}
