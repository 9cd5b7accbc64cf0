package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	resetCLIState(t)
	chdir(t, t.TempDir())

	t.Run("creates meld.yaml with defaults", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"init", "--project", "screen-42"})
		require.NoError(t, cmd.Execute())

		assert.Contains(t, out.String(), "Created meld.yaml")

		config, err := LoadMeldConfig("meld.yaml")
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "screen-42", config.Project)
		assert.Equal(t, "DATA", config.Results.Select)
		assert.Equal(t, 1, config.Results.HeaderDepth)
		assert.Equal(t, "_", config.Results.Separator)
		assert.Equal(t, []string{"Image_ImageNumber"}, config.Aggregate.On)
		assert.Equal(t, "median", config.Aggregate.Method)
		assert.Equal(t, "Metadata", config.Aggregate.MetadataMarker)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetArgs([]string{"init"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		initForce = false
		cmd := NewRootCommand()
		cmd.SetArgs([]string{"init", "--force", "--project", "other", "--select", "IMAGE"})
		require.NoError(t, cmd.Execute())

		config, err := LoadMeldConfig("meld.yaml")
		require.NoError(t, err)
		assert.Equal(t, "other", config.Project)
		assert.Equal(t, "IMAGE", config.Results.Select)
	})
}
