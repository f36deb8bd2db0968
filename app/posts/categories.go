package posts

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const DefaultColor = "#AEBB43"

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Palette maps sub-categories to display colors.
type Palette struct {
	Default string            `yaml:"default"`
	Colors  map[string]string `yaml:"colors"`
}

func DefaultPalette() *Palette {
	return &Palette{
		Default: DefaultColor,
		Colors: map[string]string{
			"About FH": "#AEBB43",
			"Programs": "#47BBBC",
			"":         "#AEBB43",
		},
	}
}

// LoadPalette merges the YAML file at path over DefaultPalette.
// A missing file is not an error.
func LoadPalette(path string) (*Palette, error) {
	palette := DefaultPalette()
	if path == "" {
		return palette, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("No category palette file, using built-in colors", "file", path)
			return palette, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var override Palette
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if override.Default != "" {
		if !hexColor.MatchString(override.Default) {
			return nil, fmt.Errorf("invalid default color %q", override.Default)
		}
		palette.Default = override.Default
	}
	for category, color := range override.Colors {
		if !hexColor.MatchString(color) {
			return nil, fmt.Errorf("invalid color %q for category %q", color, category)
		}
		palette.Colors[category] = color
	}

	slog.Debug("Category palette loaded", "file", path, "categories", len(palette.Colors))

	return palette, nil
}

func (p *Palette) Color(subCategory string) string {
	if color, ok := p.Colors[subCategory]; ok {
		return color
	}
	return p.Default
}
