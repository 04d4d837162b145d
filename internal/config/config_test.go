package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/pkg/lint"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadFromDir(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		cfg, err := LoadFromDir(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("defaults", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ConfigFileNameAlt, "analysis_depth: full\n")

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "full", cfg.AnalysisDepth)
		assert.Equal(t, DefaultInclude(), cfg.Include)
		assert.Equal(t, DefaultExclude(), cfg.Exclude)
		assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
		assert.Equal(t, DefaultSnapshotPath, cfg.Snapshot.Path)
		assert.Nil(t, cfg.Lint)
	})

	t.Run("lint section", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ConfigFileName, `
include: ["src/**/*.kt"]
exclude: []
lint:
  disabled: [CV02]
  severity:
    RF01: error
  rules:
    ST01:
      allow_while_true: false
  scripts: [rules/no_temp.star]
`)
		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"src/**/*.kt"}, cfg.Include)
		assert.Empty(t, cfg.Exclude)
		require.NotNil(t, cfg.Lint)
		assert.Equal(t, []string{"rules/no_temp.star"}, cfg.Lint.Scripts)

		lc, err := cfg.Lint.ToLintConfig()
		require.NoError(t, err)
		assert.True(t, lc.IsDisabled("CV02"))
		assert.Equal(t, lint.SeverityError, lc.GetSeverity("RF01", lint.SeverityWarning))
		assert.Equal(t, false, lc.GetRuleOptions("ST01")["allow_while_true"])
	})

	t.Run("malformed", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ConfigFileName, "include: [\n")
		_, err := LoadFromDir(dir)
		assert.Error(t, err)
	})
}

func TestLintConfig_ToLintConfig(t *testing.T) {
	var nilCfg *LintConfig
	lc, err := nilCfg.ToLintConfig()
	require.NoError(t, err)
	assert.False(t, lc.IsDisabled("UA01"))

	_, err = (&LintConfig{Severity: map[string]string{"RF01": "loud"}}).ToLintConfig()
	assert.ErrorContains(t, err, "invalid severity")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ConfigFileName, "")
	nested := filepath.Join(root, "src", "main", "kotlin")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, root, FindProjectRoot(root))
	assert.Equal(t, filepath.Join(root, ConfigFileName), FindConfigFile(root))
	assert.Empty(t, FindConfigFile(nested))
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
