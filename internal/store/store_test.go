package store

import (
	"context"
	"errors"
	"testing"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInsertAndSelect_Nested(t *testing.T) {
	ctx := context.Background()
	st := New(testutil.NewDB(t))

	p := models.Project{Name: "Insights", Summary: "s", Goals: []string{"drive_flow"}}
	require.NoError(t, st.Projects.Insert(ctx, &p))
	require.NotEqual(t, "", p.ID.String())

	m := models.Milestone{ProjectID: p.ID, Title: "Kickoff", Position: 0}
	require.NoError(t, st.Milestones.Insert(ctx, &m))
	n := models.Note{MilestoneID: m.ID, Type: models.NoteInfo, Content: "hello"}
	require.NoError(t, st.Notes.Insert(ctx, &n))

	rows, err := st.Projects.Select(ctx, Query{Nested: []string{"Milestones.Notes"}, Order: "created_at ASC"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"drive_flow"}, []string(rows[0].Goals))
	require.Len(t, rows[0].Milestones, 1)
	require.Len(t, rows[0].Milestones[0].Notes, 1)
	assert.Equal(t, "hello", rows[0].Milestones[0].Notes[0].Content)
}

func TestUpdate_NoRows(t *testing.T) {
	ctx := context.Background()
	st := New(testutil.NewDB(t))

	err := st.Projects.Update(ctx, map[string]any{"summary": "x"}, Filter{"name": "missing"})
	var roe *RemoteOperationError
	require.ErrorAs(t, err, &roe)
	assert.Equal(t, TableProjects, roe.Table)
	assert.Equal(t, "update", roe.Op)
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestUpdate_RequiresFilter(t *testing.T) {
	st := New(testutil.NewDB(t))
	err := st.Projects.Update(context.Background(), map[string]any{"summary": "x"}, nil)
	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)

	err = st.Projects.Delete(context.Background(), Filter{})
	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)
}

func TestDelete_SoftDeletes(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	st := New(db)

	s := models.StatusUpdate{ProjectID: uuid.New(), Content: "c", Status: models.StatusCompleted}
	require.NoError(t, st.StatusUpdates.Insert(ctx, &s))
	require.NoError(t, st.StatusUpdates.Delete(ctx, Filter{"id": s.ID}))

	rows, err := st.StatusUpdates.Select(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	var count int64
	db.Unscoped().Model(&models.StatusUpdate{}).Count(&count)
	assert.Equal(t, int64(1), count)

	err = st.StatusUpdates.Delete(ctx, Filter{"id": s.ID})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestSelect_WhereAndLimit(t *testing.T) {
	ctx := context.Background()
	st := New(testutil.NewDB(t))
	projectID := uuid.New()

	for _, title := range []string{"a", "b", "c"} {
		m := models.Milestone{ProjectID: projectID, Title: title}
		require.NoError(t, st.Milestones.Insert(ctx, &m))
	}

	rows, err := st.Milestones.Select(ctx, Query{Where: "title <> ?", Args: []any{"a"}, Order: "title DESC", Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].Title)
}

func TestCountAndOffset(t *testing.T) {
	ctx := context.Background()
	st := New(testutil.NewDB(t))
	projectID := uuid.New()

	for _, title := range []string{"a", "b", "c"} {
		m := models.Milestone{ProjectID: projectID, Title: title}
		require.NoError(t, st.Milestones.Insert(ctx, &m))
	}
	require.NoError(t, st.Milestones.Insert(ctx, &models.Milestone{ProjectID: uuid.New(), Title: "other"}))

	n, err := st.Milestones.Count(ctx, Filter{"project_id": projectID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := st.Milestones.Select(ctx, Query{Filter: Filter{"project_id": projectID}, Order: "title ASC", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].Title)
}
