package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the defaults tmxdump runs with. Flags given on the command
// line take precedence.
type Settings struct {
	Format string `yaml:"format"`
	Strict bool   `yaml:"strict"`
	Root   string `yaml:"root"` // Directory external tilesets are resolved against
}

func DefaultSettings() Settings {
	return Settings{
		Format: FormatYAML,
	}
}

// LoadSettings reads settings from a YAML file on top of the defaults. An
// empty path yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("could not read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("could not parse settings file %s: %w", path, err)
	}

	switch settings.Format {
	case FormatYAML, FormatJSON, FormatCBOR:
	default:
		return settings, fmt.Errorf("settings file %s: unknown format %q", path, settings.Format)
	}

	return settings, nil
}
