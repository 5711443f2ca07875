package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Sources.Dir)
	assert.Equal(t, "test_functions", cfg.Sources.Reserved)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.Empty(t, cfg.File)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tseq.yaml"), []byte(
		"sources:\n  dir: units\nlog:\n  level: debug\nreport:\n  format: md\n"), 0o644))
	t.Setenv("TSEQ_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("report", "", "")
	flags.String("dir", "", "")
	require.NoError(t, flags.Parse([]string{"--report", "json"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "units", cfg.Sources.Dir, "unset flag does not override file")
	assert.Equal(t, "warn", cfg.Log.Level, "env beats file")
	assert.Equal(t, "json", cfg.Report.Format, "flag beats file")
	assert.Equal(t, "tseq.yaml", filepath.Base(cfg.File))
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [\n"), 0o644))
	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "read config")

	require.NoError(t, os.WriteFile(path, []byte("report:\n  format: pdf\n"), 0o644))
	_, err = Load(path, nil)
	assert.ErrorContains(t, err, "report.format")
}
