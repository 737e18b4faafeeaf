package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetting_DefaultsApplyWithoutConfigFile(t *testing.T) {
	settings := Setting()
	require.NotNil(t, settings)

	assert.False(t, settings.Debug)
	assert.Equal(t, "playlog", settings.Main.Name)
	assert.Equal(t, "archives", settings.Archive.Path)
	assert.Equal(t, 0, settings.Archive.Retention)
	assert.True(t, settings.Output.SQLite.Enabled)
	assert.Equal(t, "playlog.db", settings.Output.SQLite.Path)
	assert.False(t, settings.Output.MySQL.Enabled)
	assert.Equal(t, RotationDaily, settings.Main.Log.Rotation)
}

func TestSetting_ReturnsSameInstance(t *testing.T) {
	first := Setting()
	second := Setting()
	assert.Same(t, first, second)
}

func TestGetDefaultConfigPaths(t *testing.T) {
	paths, err := GetDefaultConfigPaths()
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths[1], "playlog")
	assert.Equal(t, "/etc/playlog", paths[2])
}
