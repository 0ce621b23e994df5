package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_AllSettings(t *testing.T) {
	assert := assert.New(t)

	conf, err := Decode(`
format = "tool"
prelude = "builtins.ms"
suppress-info = true
color = "never"
`, "/proj")

	require.NoError(t, err)
	assert.Equal("tool", conf.Format)
	assert.Equal(filepath.Join("/proj", "builtins.ms"), conf.Prelude)
	assert.True(conf.SuppressInfo)
	assert.Equal(ColorNever, conf.Color)
}

func TestDecode_EmptyGivesDefaults(t *testing.T) {
	conf, err := Decode("", "/proj")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestDecode_AbsolutePreludeKeptAsIs(t *testing.T) {
	conf, err := Decode(`prelude = "/abs/builtins.ms"`, "/proj")
	require.NoError(t, err)
	assert.Equal(t, "/abs/builtins.ms", conf.Prelude)
}

func TestDecode_BadFormatRejected(t *testing.T) {
	_, err := Decode(`format = "shiny"`, ".")
	assert.ErrorContains(t, err, "format")
}

func TestDecode_BadColorRejected(t *testing.T) {
	_, err := Decode(`color = "sometimes"`, ".")
	assert.ErrorContains(t, err, "color")
}

func TestDecode_UnknownKeyRejected(t *testing.T) {
	_, err := Decode(`formt = "tool"`, ".")
	assert.ErrorContains(t, err, "unrecognized key")
}

func TestLoadNear_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	conf, err := LoadNear(filepath.Join(dir, "main.ms"))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadNear_PicksUpFileNextToSource(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, DefaultFilename), []byte(`format = "fancy"`), 0644)
	require.NoError(t, err)

	conf, err := LoadNear(filepath.Join(dir, "main.ms"))
	require.NoError(t, err)
	assert.Equal(t, "fancy", conf.Format)
}
