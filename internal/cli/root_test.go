package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semapa/pkg/config"
)

func newTestApp() *App {
	return &App{Config: &config.Config{}, Logger: zap.NewNop()}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd(newTestApp())

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"seed", "core"},
		{"seed", "admin"},
		{"seed", "all"},
		{"import", "especies"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestImportEspecies_RequiresFileArgument(t *testing.T) {
	app := newTestApp()
	root := NewRootCmd(app)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import", "especies"})

	err := root.Execute()
	require.Error(t, err)
	assert.Nil(t, app.pool, "argument errors must not open a connection")
}

func TestMigrate_RejectsExtraArguments(t *testing.T) {
	root := NewRootCmd(newTestApp())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "up", "20"})

	assert.Error(t, root.Execute())
}
