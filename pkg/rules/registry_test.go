package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PriorityOrder(t *testing.T) {
	reg := Default()

	require.Len(t, reg.Rules, 5)
	for i := 1; i < len(reg.Rules); i++ {
		assert.Less(t, reg.Rules[i-1].Priority, reg.Rules[i].Priority)
	}
	assert.Equal(t, "greeting", reg.Rules[0].Intent)
	assert.Equal(t, "search", reg.Rules[1].Intent)
	assert.Equal(t, "show", reg.Rules[2].Intent)
	assert.Equal(t, "update", reg.Rules[3].Intent)
	assert.Equal(t, "add", reg.Rules[4].Intent)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid registry sorted by priority", func(t *testing.T) {
		doc := `{
			"version": "1.0.0",
			"lastUpdated": "2025-01-01",
			"rules": [
				{"intent": "add", "priority": 3, "phrases": ["add business"]},
				{"intent": "greeting", "priority": 1, "phrases": ["hi"]},
				{"intent": "search", "priority": 2, "phrases": ["find"]}
			]
		}`
		path := filepath.Join(dir, "rules.json")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		reg, err := LoadRegistry(path)
		require.NoError(t, err)
		assert.Equal(t, "greeting", reg.Rules[0].Intent)
		assert.Equal(t, "search", reg.Rules[1].Intent)
		assert.Equal(t, "add", reg.Rules[2].Intent)
	})

	t.Run("unknown intent rejected", func(t *testing.T) {
		doc := `{
			"version": "1.0.0",
			"rules": [{"intent": "teleport", "priority": 1, "phrases": ["beam me up"]}]
		}`
		path := filepath.Join(dir, "bad_intent.json")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		_, err := LoadRegistry(path)
		assert.Error(t, err)
	})

	t.Run("empty phrase list rejected", func(t *testing.T) {
		doc := `{
			"version": "1.0.0",
			"rules": [{"intent": "search", "priority": 1, "phrases": []}]
		}`
		path := filepath.Join(dir, "bad_phrases.json")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		_, err := LoadRegistry(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRegistry(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}
