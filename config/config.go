// Package config provides configuration loading and management for docdiff.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qri-io/docdiff"
	"gopkg.in/yaml.v3"
)

// Config represents the complete docdiff configuration
type Config struct {
	Rules      docdiff.Rules    `yaml:"rules"`
	Exclusions ExclusionsConfig `yaml:"exclusions"`
	Files      FilesConfig      `yaml:"files"`
	Database   DatabaseConfig   `yaml:"database"`
	Report     ReportConfig     `yaml:"report"`
	Batch      BatchConfig      `yaml:"batch"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ExclusionsConfig locates the excluded attribute list
type ExclusionsConfig struct {
	// Path is a CSV file with an "attribute" column. A missing file is not
	// an error, nothing is excluded
	Path string `yaml:"path"`
}

// FilesConfig configures document pairs read from the filesystem
type FilesConfig struct {
	// MarkupDir is the folder markup documents named in the work-list are
	// read from
	MarkupDir string `yaml:"markup_dir"`
	// MarkupWorklist is a CSV with wcs_xml & micro_xml columns
	MarkupWorklist string `yaml:"markup_worklist"`
	// ObjectDir is the folder JSON/YAML documents are read from
	ObjectDir string `yaml:"object_dir"`
	// ObjectWorklist is a CSV with wcs_json & micro_json columns
	ObjectWorklist string `yaml:"object_worklist"`
}

// DatabaseConfig configures markup documents fetched from a relational store
type DatabaseConfig struct {
	// Driver is one of mysql, postgres, sqlite
	Driver string `yaml:"driver"`
	// DSN is the driver specific data source name
	DSN string `yaml:"dsn"`
	// Table holding one document per row
	Table string `yaml:"table"`
	// IDColumn is matched against work-list identifiers
	IDColumn string `yaml:"id_column"`
	// ContentColumn holds the document payload
	ContentColumn string `yaml:"content_column"`
	// Worklist is a CSV with wcs_order_id & micro_order_id columns
	Worklist string `yaml:"worklist"`
}

// ReportConfig configures report output
type ReportConfig struct {
	// Output paths per mode. The extension picks the format: .json writes
	// JSON, anything else CSV
	MarkupOutput   string `yaml:"markup_output"`
	DatabaseOutput string `yaml:"database_output"`
	ObjectOutput   string `yaml:"object_output"`
	// IncludePath adds a "path" column to CSV reports. Unset keeps the value
	// of the previous config layer, an explicit false turns it off
	IncludePath *bool `yaml:"include_path,omitempty"`
	// IncludePair adds a "pair" column to CSV reports
	IncludePair *bool `yaml:"include_pair,omitempty"`
}

// PathColumn reports whether the "path" column is enabled
func (r ReportConfig) PathColumn() bool {
	return r.IncludePath != nil && *r.IncludePath
}

// PairColumn reports whether the "pair" column is enabled
func (r ReportConfig) PairColumn() bool {
	return r.IncludePair != nil && *r.IncludePair
}

// BatchConfig configures the batch driver
type BatchConfig struct {
	// Workers is the number of pairs compared at once, output order is
	// unaffected
	Workers int `yaml:"workers"`
}

// MetricsConfig configures metrics output
type MetricsConfig struct {
	// TextfilePath, when set, receives batch metrics in the prometheus text
	// exposition format after every run
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Rules: docdiff.Rules{
			IdentityAttr: docdiff.DefaultIdentityAttr,
		},
		Exclusions: ExclusionsConfig{
			Path: "excluded_attributes.csv",
		},
		Files: FilesConfig{
			MarkupDir:      "xmls",
			MarkupWorklist: "input.csv",
			ObjectDir:      "jsons",
			ObjectWorklist: "input_json.csv",
		},
		Database: DatabaseConfig{
			Driver:        "mysql",
			Table:         "orders",
			IDColumn:      "order_id",
			ContentColumn: "xml_content",
			Worklist:      "orders_to_compare.csv",
		},
		Report: ReportConfig{
			MarkupOutput:   "all_differences_case1.csv",
			DatabaseOutput: "all_differences_case2.csv",
			ObjectOutput:   "all_differences_json.csv",
		},
		Batch: BatchConfig{
			Workers: 1,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be one of mysql, postgres, sqlite, got %q", c.Database.Driver)
	}
	if !identifier(c.Database.Table) {
		return fmt.Errorf("database.table %q is not a valid identifier", c.Database.Table)
	}
	if !identifier(c.Database.IDColumn) {
		return fmt.Errorf("database.id_column %q is not a valid identifier", c.Database.IDColumn)
	}
	if !identifier(c.Database.ContentColumn) {
		return fmt.Errorf("database.content_column %q is not a valid identifier", c.Database.ContentColumn)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}
	for _, t := range c.Rules.IgnoredTags {
		for _, id := range c.Rules.IdentityTags {
			if t == id {
				return fmt.Errorf("rules: %q is both ignored and identity addressed", t)
			}
		}
	}
	return nil
}

// identifier reports whether s is safe to interpolate into SQL as a table or
// column name
func identifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case r == '.' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return true
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Merge merges another config into this one. Non-zero values in other
// override values in c, rule tables are merged key by key. Report columns
// are overridden whenever other sets them, including to false
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Rules.TagRenames) > 0 {
		if c.Rules.TagRenames == nil {
			c.Rules.TagRenames = map[string]string{}
		}
		for k, v := range other.Rules.TagRenames {
			c.Rules.TagRenames[k] = v
		}
	}
	if len(other.Rules.AttrRenames) > 0 {
		if c.Rules.AttrRenames == nil {
			c.Rules.AttrRenames = map[string]string{}
		}
		for k, v := range other.Rules.AttrRenames {
			c.Rules.AttrRenames[k] = v
		}
	}
	if len(other.Rules.IgnoredTags) > 0 {
		c.Rules.IgnoredTags = other.Rules.IgnoredTags
	}
	if len(other.Rules.IdentityTags) > 0 {
		c.Rules.IdentityTags = other.Rules.IdentityTags
	}
	mergeString(&c.Rules.IdentityAttr, other.Rules.IdentityAttr)

	mergeString(&c.Exclusions.Path, other.Exclusions.Path)

	mergeString(&c.Files.MarkupDir, other.Files.MarkupDir)
	mergeString(&c.Files.MarkupWorklist, other.Files.MarkupWorklist)
	mergeString(&c.Files.ObjectDir, other.Files.ObjectDir)
	mergeString(&c.Files.ObjectWorklist, other.Files.ObjectWorklist)

	mergeString(&c.Database.Driver, other.Database.Driver)
	mergeString(&c.Database.DSN, other.Database.DSN)
	mergeString(&c.Database.Table, other.Database.Table)
	mergeString(&c.Database.IDColumn, other.Database.IDColumn)
	mergeString(&c.Database.ContentColumn, other.Database.ContentColumn)
	mergeString(&c.Database.Worklist, other.Database.Worklist)

	mergeString(&c.Report.MarkupOutput, other.Report.MarkupOutput)
	mergeString(&c.Report.DatabaseOutput, other.Report.DatabaseOutput)
	mergeString(&c.Report.ObjectOutput, other.Report.ObjectOutput)
	mergeBool(&c.Report.IncludePath, other.Report.IncludePath)
	mergeBool(&c.Report.IncludePair, other.Report.IncludePair)

	if other.Batch.Workers > 0 {
		c.Batch.Workers = other.Batch.Workers
	}

	mergeString(&c.Metrics.TextfilePath, other.Metrics.TextfilePath)
}

func mergeBool(dst **bool, v *bool) {
	if v != nil {
		b := *v
		*dst = &b
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
