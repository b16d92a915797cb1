package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "Insights-roadmap.pdf", Filename("Insights"))
	assert.Equal(t, "Q1-Q2 Plan-roadmap.pdf", Filename("Q1/Q2 Plan"))
	assert.Equal(t, "project-roadmap.pdf", Filename("  "))
}

func TestRender_ProducesPDF(t *testing.T) {
	rep := Report{
		Project: models.Project{
			Name:    "Insights",
			Summary: "Grow the insights practice.",
			Goals:   []string{"drive_flow", "unknown_goal"},
			KPIs:    []string{"Pipeline", "Win rate"},
			Milestones: []models.Milestone{
				{Title: "Kickoff", Description: "Team aligned", Date: "March 2024", Completion: 100,
					Notes: []models.Note{{Type: models.NoteBlocker, Content: "Budget sign-off"}}},
				{Title: "Launch", Date: "June 2024", Completion: 150},
			},
		},
		StatusUpdates: []models.StatusUpdate{
			{Content: "Hired analyst", Status: models.StatusCompleted, CreatedAt: time.Now()},
			{Content: "Dashboard", Status: models.StatusInProgress, CreatedAt: time.Now()},
		},
		Goals:       catalog.Default(),
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRender_EmptyProject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Report{Project: models.Project{Name: "Empty"}}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGoalLabels(t *testing.T) {
	labels := goalLabels(catalog.Default(), []string{"drive_flow", "nope"})
	require.Len(t, labels, 2)
	assert.NotEqual(t, "drive_flow", labels[0])
	assert.Equal(t, "nope", labels[1])
}
