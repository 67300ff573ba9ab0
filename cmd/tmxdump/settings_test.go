package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tmxdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
	assert.Equal(t, FormatYAML, settings.Format)
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, "format: cbor\nstrict: true\nroot: assets\n")

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, Settings{Format: FormatCBOR, Strict: true, Root: "assets"}, settings)
}

func TestLoadSettingsPartial(t *testing.T) {
	settings, err := LoadSettings(writeSettings(t, "strict: true\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, settings.Format)
	assert.True(t, settings.Strict)
}

func TestLoadSettingsErrors(t *testing.T) {
	_, err := LoadSettings(writeSettings(t, "format: toml\n"))
	assert.ErrorContains(t, err, "unknown format")

	_, err = LoadSettings(writeSettings(t, "format: [yaml\n"))
	assert.ErrorContains(t, err, "could not parse")

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "could not read")
}
