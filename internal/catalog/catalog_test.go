package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Len(t, c.All(), 7)
	g, ok := c.Lookup("drive_flow")
	require.True(t, ok)
	assert.Equal(t, "Drive More Flow", g.Label)
	assert.Equal(t, "thought_leader", c.All()[0].ID)
}

func TestValidate(t *testing.T) {
	c := Default()

	assert.NoError(t, c.Validate(nil))
	assert.NoError(t, c.Validate([]string{"efficiency", "new_clients"}))
	assert.Error(t, c.Validate([]string{"world_domination"}))
	assert.Error(t, c.Validate([]string{"efficiency", "efficiency"}))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("goals:\n  - label: no id\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("goals:\n  - id: a\n  - id: a\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("goals: ["))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("goals:\n  - id: one\n    label: One\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.All(), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
