package model

import (
	"bytes"
	_ "embed"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"gopkg.in/yaml.v3"
)

//go:embed default_palette.yaml
var defaultPaletteYAML []byte

// Palette maps teams, statuses, risk levels and root causes to colors
type Palette struct {
	Teams         map[string]types.Tone `yaml:"teams"`
	Statuses      map[string]types.Tone `yaml:"statuses"`
	Risks         map[string]types.Tone `yaml:"risks"`
	RootCauses    map[string]string     `yaml:"root_causes"` // hex colors for SVG fills
	FallbackColor string                `yaml:"fallback_color"`
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultPalette returns the built-in palette
func DefaultPalette() *Palette {
	p, err := ParsePalette(defaultPaletteYAML)
	if err != nil {
		// The embedded palette is covered by tests
		panic(err)
	}
	return p
}

// LoadPalette loads a palette from a YAML file
func LoadPalette(path string) (*Palette, error) {
	if path == "" {
		return nil, goerr.New("palette file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "palette file not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read palette file", goerr.V("path", path))
	}

	p, err := ParsePalette(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid palette file", goerr.V("path", path))
	}
	return p, nil
}

// ParsePalette parses and validates palette YAML
func ParsePalette(data []byte) (*Palette, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Palette
	if err := dec.Decode(&p); err != nil {
		return nil, goerr.Wrap(err, "failed to parse palette YAML")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.Teams = lowerKeys(p.Teams)
	p.Statuses = lowerKeys(p.Statuses)
	p.Risks = lowerKeys(p.Risks)
	p.RootCauses = lowerKeys(p.RootCauses)
	if p.FallbackColor == "" {
		p.FallbackColor = "#6b7280"
	}
	return &p, nil
}

// Validate validates the palette
func (p *Palette) Validate() error {
	for name, tones := range map[string]map[string]types.Tone{
		"teams":    p.Teams,
		"statuses": p.Statuses,
		"risks":    p.Risks,
	} {
		for key, tone := range tones {
			if !tone.IsValid() {
				return goerr.New("unknown tone",
					goerr.V("section", name),
					goerr.V("key", key),
					goerr.V("tone", tone))
			}
		}
	}

	for key, color := range p.RootCauses {
		if !hexColorPattern.MatchString(color) {
			return goerr.New("root cause color must be a hex color",
				goerr.V("key", key),
				goerr.V("color", color))
		}
	}
	if p.FallbackColor != "" && !hexColorPattern.MatchString(p.FallbackColor) {
		return goerr.New("fallback color must be a hex color",
			goerr.V("color", p.FallbackColor))
	}
	return nil
}

// TeamTone returns the tone of a team badge
func (p *Palette) TeamTone(team string) types.Tone {
	return lookupTone(p.Teams, team)
}

// StatusTone returns the tone of a project status badge
func (p *Palette) StatusTone(status string) types.Tone {
	return lookupTone(p.Statuses, status)
}

// RiskTone returns the tone of a risk level badge
func (p *Palette) RiskTone(level string) types.Tone {
	return lookupTone(p.Risks, level)
}

// RootCauseColor returns the fill color of a root cause category
func (p *Palette) RootCauseColor(category string) string {
	if color, ok := p.RootCauses[normalizeKey(category)]; ok {
		return color
	}
	return p.FallbackColor
}

func lookupTone(tones map[string]types.Tone, name string) types.Tone {
	if tone, ok := tones[normalizeKey(name)]; ok {
		return tone
	}
	return types.ToneGray
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerKeys[V any](m map[string]V) map[string]V {
	result := make(map[string]V, len(m))
	for k, v := range m {
		result[normalizeKey(k)] = v
	}
	return result
}
