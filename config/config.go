package config

import (
	"fmt"
	"log"
	"regexp"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// Example ENV equivalent:
//
//	BMF_URL=https://service.bmf.gv.at/service/allg/lsu/__Gen_Csv.asp
//	OUTPUT_DIR=data
//	MIN_ROWS=100
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
type Config struct {
	Server   ServerConfig   // HTTP server configuration (api mode)
	Pipeline PipelineConfig // convert pipeline settings
	Postgres PostgresConfig // PostgreSQL connection settings (archive/api modes)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// PipelineConfig holds the convert pipeline settings.
//
// Fields:
//   - SourceURL: where the raw BMF extract is downloaded from.
//   - OutputDir: directory the artifacts are written to.
//   - MinRows: validation floor guarding against a truncated fetch.
//   - KennzifferPattern: best-effort pattern for the UR reference code;
//     mismatches are reported as warnings only.
type PipelineConfig struct {
	SourceURL         string
	OutputDir         string
	MinRows           int
	KennzifferPattern *regexp.Regexp
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string // computed DSN used by database/sql
}

// AppConfig is the globally accessible configuration instance, populated
// once via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from a .env file (if present).
//  3. Environment variables.
//
// Fatal exit: if required variables are missing or the Kennziffer pattern
// does not compile, the app terminates with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("BMF_URL", "https://service.bmf.gv.at/service/allg/lsu/__Gen_Csv.asp")
	viper.SetDefault("OUTPUT_DIR", "data")
	viper.SetDefault("MIN_ROWS", 100)
	viper.SetDefault("KENNZIFFER_PATTERN", `^R\d{3}[A-Z]\d{3,4}[A-Z0-9]?$`)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "scheinfirmen")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	pattern, err := regexp.Compile(viper.GetString("KENNZIFFER_PATTERN"))
	if err != nil {
		log.Fatalf("invalid KENNZIFFER_PATTERN: %v", err)
	}

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Pipeline: PipelineConfig{
			SourceURL:         viper.GetString("BMF_URL"),
			OutputDir:         viper.GetString("OUTPUT_DIR"),
			MinRows:           viper.GetInt("MIN_ROWS"),
			KennzifferPattern: pattern,
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// validateConfig ensures required variables are present and terminates the
// application if they are missing.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Pipeline.SourceURL == "" {
		missing = append(missing, "BMF_URL")
	}
	if AppConfig.Pipeline.OutputDir == "" {
		missing = append(missing, "OUTPUT_DIR")
	}
	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if AppConfig.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if AppConfig.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
