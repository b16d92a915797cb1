package events

import (
	"context"
	"testing"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gminsights/roadmap-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLog_RecordsProjectEvents(t *testing.T) {
	ctx := context.Background()
	st := store.New(testutil.NewDB(t))
	activity := NewActivityLog(st.Activities, nil)

	project, user, milestone := uuid.New(), uuid.New(), uuid.New()
	activity.Publish(ctx, Event{
		Type:      MilestoneAdded,
		ProjectID: project,
		UserID:    user,
		Data:      models.Milestone{ID: milestone, Title: "Kickoff"},
	})
	activity.Publish(ctx, Event{Type: NotesMigrated, UserID: user})

	rows, err := st.Activities.Select(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, project, rows[0].ProjectID)
	assert.Equal(t, string(MilestoneAdded), rows[0].ActionType)
	require.NotNil(t, rows[0].TargetID)
	assert.Equal(t, milestone, *rows[0].TargetID)
}

func TestTargetID(t *testing.T) {
	id := uuid.New()
	got := targetID([]byte(`{"id":"` + id.String() + `"}`))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.Nil(t, targetID([]byte(`{"summary":"x"}`)))
	assert.Nil(t, targetID([]byte(`[1,2]`)))
}
