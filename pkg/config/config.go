package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the portfolio engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets (the store
// password) must only come from environment variables.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	Inputs InputsConfig `yaml:"inputs"`
	Output OutputConfig `yaml:"output"`

	// Optional working store. The pipeline's outputs never depend on it.
	Store StoreConfig `yaml:"store"`
}

// InputsConfig locates the two input feeds.
type InputsConfig struct {
	ApplicationsPath string `yaml:"applications_path" env:"APPLICATIONS_CSV" env-default:"data/applications.csv"`
	LMSPath          string `yaml:"lms_path" env:"LMS_CSV" env-default:"data/lms_updates.csv"`
}

// OutputConfig controls where and how artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" env:"OUTPUT_DIR" env-default:"output"`

	// ExcelReport additionally renders the quality report as an .xlsx
	// workbook next to the CSV.
	ExcelReport bool `yaml:"excel_report" env:"EXCEL_REPORT" env-default:"false"`
}

// Artifact paths inside the output directory.

func (o OutputConfig) CleanedApplicationsPath() string {
	return filepath.Join(o.Dir, "cleaned_applications.csv")
}

func (o OutputConfig) LoanPortfolioPath() string {
	return filepath.Join(o.Dir, "loan_portfolio.csv")
}

func (o OutputConfig) QualityReportPath() string {
	return filepath.Join(o.Dir, "data_quality_report.csv")
}

func (o OutputConfig) QualityReportXLSXPath() string {
	return filepath.Join(o.Dir, "data_quality_report.xlsx")
}

// StoreConfig holds PostgreSQL working-store configuration.
type StoreConfig struct {
	Enabled        bool   `yaml:"enabled" env:"STORE_ENABLED" env-default:"false"`
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"portfolio"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"portfolio_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *StoreConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; the engine then runs on
// environment variables and defaults alone.
func Load() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("config.yaml", cfg)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if cfg.Inputs.ApplicationsPath == "" || cfg.Inputs.LMSPath == "" {
		return nil, fmt.Errorf("both input feed paths must be configured")
	}
	if cfg.Output.Dir == "" {
		return nil, fmt.Errorf("output directory must be configured")
	}

	return cfg, nil
}
