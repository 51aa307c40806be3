package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(original) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "APPLICATIONS_CSV", "LMS_CSV", "OUTPUT_DIR",
		"EXCEL_REPORT", "STORE_ENABLED", "PGHOST", "PGPORT", "PGUSER",
		"PGPASSWORD", "PGDATABASE", "PGSSLMODE", "MIGRATIONS_PATH",
	} {
		// t.Setenv restores the previous value on cleanup.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "data/applications.csv", cfg.Inputs.ApplicationsPath)
	assert.Equal(t, "data/lms_updates.csv", cfg.Inputs.LMSPath)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.False(t, cfg.Output.ExcelReport)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "migrations", cfg.Store.MigrationsPath)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yamlContent := `
env: "test"
inputs:
  applications_path: "feeds/apps.csv"
  lms_path: "feeds/lms.csv"
output:
  dir: "out"
store:
  enabled: true
  host: "db.example.com"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlContent), 0o644))
	chdir(t, dir)

	t.Setenv("APPLICATIONS_CSV", "/srv/feeds/applications.csv")
	t.Setenv("PGPASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "/srv/feeds/applications.csv", cfg.Inputs.ApplicationsPath)
	assert.Equal(t, "feeds/lms.csv", cfg.Inputs.LMSPath)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "db.example.com", cfg.Store.Host)
	assert.Equal(t, "secret", cfg.Store.Password)
}

func TestOutputConfig_ArtifactPaths(t *testing.T) {
	o := OutputConfig{Dir: "out"}
	assert.Equal(t, filepath.Join("out", "cleaned_applications.csv"), o.CleanedApplicationsPath())
	assert.Equal(t, filepath.Join("out", "loan_portfolio.csv"), o.LoanPortfolioPath())
	assert.Equal(t, filepath.Join("out", "data_quality_report.csv"), o.QualityReportPath())
	assert.Equal(t, filepath.Join("out", "data_quality_report.xlsx"), o.QualityReportXLSXPath())
}

func TestStoreConfig_ConnectionString(t *testing.T) {
	c := StoreConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "portfolio",
		Password: "pw",
		Database: "portfolio_engine",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=portfolio password=pw dbname=portfolio_engine sslmode=disable",
		c.ConnectionString())
}
