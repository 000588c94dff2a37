package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qri-io/docdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "name", cfg.Rules.IdentityAttr)
	assert.Equal(t, "excluded_attributes.csv", cfg.Exclusions.Path)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "orders", cfg.Database.Table)
	assert.Equal(t, "order_id", cfg.Database.IDColumn)
	assert.Equal(t, "xml_content", cfg.Database.ContentColumn)
	assert.Equal(t, 1, cfg.Batch.Workers)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown driver",
			modify:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: true,
		},
		{
			name:    "schema qualified table",
			modify:  func(c *Config) { c.Database.Table = "shop.orders" },
			wantErr: false,
		},
		{
			name:    "table with sql injection",
			modify:  func(c *Config) { c.Database.Table = "orders; DROP TABLE orders" },
			wantErr: true,
		},
		{
			name:    "column starting with a digit",
			modify:  func(c *Config) { c.Database.IDColumn = "1id" },
			wantErr: true,
		},
		{
			name:    "empty content column",
			modify:  func(c *Config) { c.Database.ContentColumn = "" },
			wantErr: true,
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Batch.Workers = 0 },
			wantErr: true,
		},
		{
			name: "tag both ignored and identity addressed",
			modify: func(c *Config) {
				c.Rules.IgnoredTags = []string{"Param"}
				c.Rules.IdentityTags = []string{"Param"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.TagRenames = map[string]string{"A": "B"}

	cfg.Merge(&Config{
		Rules: docdiff.Rules{
			TagRenames:  map[string]string{"C": "D"},
			IgnoredTags: []string{"Audit"},
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "postgres://localhost/orders",
		},
		Report: ReportConfig{IncludePath: boolPtr(true)},
		Batch:  BatchConfig{Workers: 4},
	})

	assert.Equal(t, map[string]string{"A": "B", "C": "D"}, cfg.Rules.TagRenames)
	assert.Equal(t, []string{"Audit"}, cfg.Rules.IgnoredTags)
	assert.Equal(t, "name", cfg.Rules.IdentityAttr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/orders", cfg.Database.DSN)
	assert.Equal(t, "orders", cfg.Database.Table, "unset values keep their defaults")
	assert.True(t, cfg.Report.PathColumn())
	assert.False(t, cfg.Report.PairColumn())
	assert.Equal(t, 4, cfg.Batch.Workers)

	cfg.Merge(nil)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestConfigMergeReportColumns(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Report.PathColumn())

	cfg.Merge(&Config{Report: ReportConfig{IncludePath: boolPtr(true), IncludePair: boolPtr(true)}})
	assert.True(t, cfg.Report.PathColumn())
	assert.True(t, cfg.Report.PairColumn())

	cfg.Merge(&Config{})
	assert.True(t, cfg.Report.PathColumn(), "unset values keep the previous layer")

	cfg.Merge(&Config{Report: ReportConfig{IncludePath: boolPtr(false)}})
	assert.False(t, cfg.Report.PathColumn(), "an explicit false turns the column off")
	assert.True(t, cfg.Report.PairColumn())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docdiff.yaml")

	cfg := DefaultConfig()
	cfg.Rules.IdentityTags = []string{"Param", "Attribute"}
	cfg.Rules.AttrRenames = map[string]string{"orderId": "id"}
	cfg.Database.DSN = "root@tcp(localhost:3306)/xml6"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules: [unclosed"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestLoaderPrecedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "sub", "dir")
	require.NoError(t, os.MkdirAll(work, 0o755))

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
database:
  driver: postgres
  table: user_orders
batch:
  workers: 2
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
database:
  table: project_orders
rules:
  identity_tags: [Param]
`)
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeFile(t, explicit, `
batch:
  workers: 8
`)

	l := NewLoader(nil)
	l.home, l.cwd = home, work

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "project_orders", cfg.Database.Table)
	assert.Equal(t, []string{"Param"}, cfg.Rules.IdentityTags)
	assert.Equal(t, 2, cfg.Batch.Workers)

	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Workers)

	_, err = l.Load(filepath.Join(project, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoaderReportColumnOverride(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), "report:\n  include_path: true\n  include_pair: true\n")
	writeFile(t, filepath.Join(project, ProjectConfigFile), "report:\n  include_path: false\n")

	l := NewLoader(nil)
	l.home, l.cwd = home, project

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Report.PathColumn())
	assert.True(t, cfg.Report.PairColumn())
}

func TestLoaderRejectsInvalidConfig(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "database:\n  driver: oracle\n")

	l := NewLoader(nil)
	l.home, l.cwd = t.TempDir(), project

	_, err := l.Load("")
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func boolPtr(b bool) *bool { return &b }
