package model

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// MonthConfig holds the headline numbers of a reporting month
type MonthConfig struct {
	TargetYear                int    `yaml:"target_year" json:"target_year"`
	TargetMonth               int    `yaml:"target_month" json:"target_month"`
	TargetMonthName           string `yaml:"target_month_name" json:"target_month_name"`
	NumberOfCompletedProjects int    `yaml:"number_of_completed_projects" json:"number_of_completed_projects"`
	NumberOfOngoingProjects   int    `yaml:"number_of_ongoing_projects" json:"number_of_ongoing_projects"`
	UptimePercentage          string `yaml:"uptime_percentage" json:"uptime_percentage"`
	NumberOfBugFixes          int    `yaml:"number_of_bug_fixes" json:"number_of_bug_fixes"`
	NumberOfDeployments       int    `yaml:"number_of_deployments" json:"number_of_deployments"`
}

// ConfigFormat is the on-disk encoding of a month configuration
type ConfigFormat string

const (
	ConfigFormatYAML ConfigFormat = "yaml"
	ConfigFormatJSON ConfigFormat = "json"
	// ConfigFormatLegacy is a script assigning an object literal to `config`.
	// Only the literal is read, as a YAML flow mapping; nothing is executed.
	ConfigFormatLegacy ConfigFormat = "legacy"
)

// ConfigFile pairs a file name with its format
type ConfigFile struct {
	Name   string
	Format ConfigFormat
}

// ConfigFiles lists the accepted configuration file names in lookup order
func ConfigFiles() []ConfigFile {
	return []ConfigFile{
		{Name: "config.yaml", Format: ConfigFormatYAML},
		{Name: "config.yml", Format: ConfigFormatYAML},
		{Name: "config.json", Format: ConfigFormatJSON},
		{Name: "config.js", Format: ConfigFormatLegacy},
	}
}

var (
	// legacyConfigPattern matches a whole script: one flat object literal
	// assigned to config, optionally followed by module.exports. Any other
	// statement makes the file malformed.
	legacyConfigPattern = regexp.MustCompile(`^(?:(?:const|let|var)\s+)?config\s*=\s*(\{[^{}]*\})\s*;?\s*` +
		`(?:module\.exports\s*=\s*config\s*;?\s*)?$`)
	legacyCommentPattern = regexp.MustCompile(`(?m)/\*[\s\S]*?\*/|^\s*//.*$`)
)

// ParseMonthConfig strictly decodes a month configuration. Unknown keys,
// wrong value types and anything that is not plain data are rejected.
func ParseMonthConfig(format ConfigFormat, data []byte) (*MonthConfig, error) {
	var (
		cfg *MonthConfig
		err error
	)

	switch format {
	case ConfigFormatYAML:
		cfg, err = parseYAMLConfig(data)
	case ConfigFormatJSON:
		cfg, err = parseJSONConfig(data)
	case ConfigFormatLegacy:
		cfg, err = parseLegacyConfig(data)
	default:
		return nil, goerr.New("unsupported config format", goerr.V("format", format))
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid month config", goerr.T(ErrTagMalformed))
	}
	return cfg, nil
}

func parseYAMLConfig(data []byte) (*MonthConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg MonthConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML config", goerr.T(ErrTagMalformed))
	}
	return &cfg, nil
}

func parseJSONConfig(data []byte) (*MonthConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg MonthConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse JSON config", goerr.T(ErrTagMalformed))
	}
	if dec.More() {
		return nil, goerr.New("unexpected data after JSON config", goerr.T(ErrTagMalformed))
	}
	return &cfg, nil
}

func parseLegacyConfig(data []byte) (*MonthConfig, error) {
	script := bytes.TrimSpace(legacyCommentPattern.ReplaceAll(data, nil))
	match := legacyConfigPattern.FindSubmatch(script)
	if match == nil {
		return nil, goerr.New("config script must only assign and export an object literal",
			goerr.T(ErrTagMalformed))
	}
	literal := match[1]

	var doc yaml.Node
	if err := yaml.Unmarshal(literal, &doc); err != nil {
		return nil, goerr.Wrap(err, "config literal is not plain data", goerr.T(ErrTagMalformed))
	}
	if err := checkPlainLiteral(&doc); err != nil {
		return nil, err
	}

	return parseYAMLConfig(literal)
}

// checkPlainLiteral accepts a flat flow mapping whose values are quoted
// strings, numbers, booleans or null. An unquoted value that does not
// resolve to one of those is an expression in the source script.
func checkPlainLiteral(doc *yaml.Node) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return goerr.New("config literal must be a single object", goerr.T(ErrTagMalformed))
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode || mapping.Style&yaml.FlowStyle == 0 {
		return goerr.New("config literal must be an object", goerr.T(ErrTagMalformed))
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return goerr.New("config values must be scalars",
				goerr.V("key", key.Value),
				goerr.T(ErrTagMalformed))
		}
		if value.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
			continue
		}
		switch value.ShortTag() {
		case "!!int", "!!float", "!!bool", "!!null":
		default:
			return goerr.New("config value is an expression, not a literal",
				goerr.V("key", key.Value),
				goerr.V("value", value.Value),
				goerr.T(ErrTagMalformed))
		}
	}
	return nil
}

// Validate validates the month configuration
func (c *MonthConfig) Validate() error {
	if c.TargetYear <= 0 {
		return goerr.New("target_year is required", goerr.V("target_year", c.TargetYear))
	}
	if c.TargetMonth < 1 || c.TargetMonth > 12 {
		return goerr.New("target_month must be between 1 and 12",
			goerr.V("target_month", c.TargetMonth))
	}

	counts := map[string]int{
		"number_of_completed_projects": c.NumberOfCompletedProjects,
		"number_of_ongoing_projects":   c.NumberOfOngoingProjects,
		"number_of_bug_fixes":          c.NumberOfBugFixes,
		"number_of_deployments":        c.NumberOfDeployments,
	}
	for name, n := range counts {
		if n < 0 {
			return goerr.New("count must not be negative",
				goerr.V("field", name),
				goerr.V("value", n))
		}
	}
	return nil
}
