package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateMilestoneRequest_Validate(t *testing.T) {
	valid := CreateMilestoneRequest{Title: "Kickoff", Description: "Start", Date: "March 2024", Completion: 0}
	require.NoError(t, valid.Validate())

	full := valid
	full.Completion = 100
	require.NoError(t, full.Validate())

	over := valid
	over.Completion = 150
	err := over.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "completion", ve.Field)

	under := valid
	under.Completion = -1
	assert.Error(t, under.Validate())

	noTitle := valid
	noTitle.Title = "  "
	require.ErrorAs(t, noTitle.Validate(), &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestUpdateMilestoneRequest_Apply(t *testing.T) {
	m := Milestone{Title: "Old", Description: "d", Date: "Q1", Completion: 10, Position: 3}
	title := "New"
	completion := 55

	got := UpdateMilestoneRequest{Title: &title, Completion: &completion}.Apply(m)

	assert.Equal(t, "New", got.Title)
	assert.Equal(t, 55, got.Completion)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, 3, got.Position)
}

func TestCreateNoteRequest_Validate(t *testing.T) {
	assert.NoError(t, CreateNoteRequest{Type: NoteBlocker, Content: "Waiting on legal"}.Validate())
	assert.Error(t, CreateNoteRequest{Type: "urgent", Content: "x"}.Validate())
	assert.Error(t, CreateNoteRequest{Type: NoteInfo, Content: ""}.Validate())
}

func TestCreateStatusUpdateRequest_Validate(t *testing.T) {
	for _, s := range Statuses {
		assert.NoError(t, CreateStatusUpdateRequest{Content: "ok", Status: s}.Validate())
	}
	assert.Error(t, CreateStatusUpdateRequest{Content: "ok", Status: "Done"}.Validate())
	assert.Error(t, CreateStatusUpdateRequest{Content: "", Status: StatusCompleted}.Validate())
}

func TestCreateProjectRequest_Validate(t *testing.T) {
	assert.NoError(t, CreateProjectRequest{Name: "Insights", Summary: "s"}.Validate())
	assert.Error(t, CreateProjectRequest{Summary: "s"}.Validate())
	assert.Error(t, CreateProjectRequest{Name: "n"}.Validate())
	assert.Error(t, CreateProjectRequest{Name: "n", Summary: "s", KPIs: []string{""}}.Validate())
}

func TestMilestone_HasLegacyNotes(t *testing.T) {
	m := Milestone{}
	assert.False(t, m.HasLegacyNotes())

	null := datatypes.JSON("null")
	m.LegacyNotes = &null
	assert.False(t, m.HasLegacyNotes())

	obj := datatypes.JSON(`{"info":"x"}`)
	m.LegacyNotes = &obj
	assert.True(t, m.HasLegacyNotes())
}
