package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "dv.cfg.json"

// MemoryConfig holds in-memory storage backend settings
type MemoryConfig struct {
	SnapshotPath string `json:"snapshotPath" mapstructure:"snapshotPath"`
	Compress     bool   `json:"compress" mapstructure:"compress"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path" validate:"required"`
}

// StorageConfig selects and configures the host store backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type" validate:"oneof=memory sqlite postgres"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host" validate:"required"`
	Port     string `json:"port" mapstructure:"port" validate:"required,numeric"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database" validate:"required"`
}

// ServerConfig holds websocket transport settings
type ServerConfig struct {
	Address   string  `json:"address" mapstructure:"address" validate:"required"`
	RateLimit float64 `json:"rateLimit" mapstructure:"rateLimit" validate:"gt=0"`
	Burst     int     `json:"burst" mapstructure:"burst" validate:"gte=1"`

	StatusFile     string        `json:"statusFile" mapstructure:"statusFile"`
	StatusInterval time.Duration `json:"statusInterval" mapstructure:"statusInterval" validate:"gt=0"`
}

// TelemetryConfig holds InfluxDB ship track settings
type TelemetryConfig struct {
	Enabled       bool          `json:"enabled" mapstructure:"enabled"`
	Protocol      string        `json:"protocol" mapstructure:"protocol" validate:"oneof=http https"`
	Host          string        `json:"host" mapstructure:"host" validate:"required"`
	Port          string        `json:"port" mapstructure:"port" validate:"required,numeric"`
	Token         string        `json:"token" mapstructure:"token"`
	Org           string        `json:"org" mapstructure:"org" validate:"required"`
	Bucket        string        `json:"bucket" mapstructure:"bucket" validate:"required"`
	BackupDir     string        `json:"backupDir" mapstructure:"backupDir"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
}

// URL returns the server URL of the Influx instance.
func (c TelemetryConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GameConfig holds table defaults
type GameConfig struct {
	DefaultScaleKm int    `json:"defaultScaleKm" mapstructure:"defaultScaleKm" validate:"gte=1"`
	PlayerPageID   string `json:"playerPageId" mapstructure:"playerPageId"`
}

// LoggingConfig holds log sinks settings
type LoggingConfig struct {
	Level          string `validate:"oneof=trace debug info warn error"`
	Dir            string
	GraylogEnabled bool
	GraylogAddress string `validate:"required_if=GraylogEnabled true"`
}

// Load reads configuration from the JSON file in configDir, the environment
// (DV_ prefix, optional .env file in configDir) and default values. A missing
// config file is not an error.
func Load(configDir string) error {
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./dvlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.snapshotPath", "")
	viper.SetDefault("storage.memory.compress", false)
	viper.SetDefault("storage.sqlite.path", "./dv.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "dv")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.rateLimit", 2.0)
	viper.SetDefault("server.burst", 2)
	viper.SetDefault("server.statusFile", "./dvlogs/status.json")
	viper.SetDefault("server.statusInterval", "5s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "dv")
	viper.SetDefault("influx.bucket", "dv_tracks")
	viper.SetDefault("influx.backupDir", "./dvlogs")
	viper.SetDefault("influx.flushInterval", "1s")

	viper.SetDefault("game.defaultScaleKm", 10)
	viper.SetDefault("game.playerPageId", "")

	viper.SetEnvPrefix("DV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetLoggingConfig returns the log sink settings.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          strings.ToLower(viper.GetString("logLevel")),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			SnapshotPath: viper.GetString("storage.memory.snapshotPath"),
			Compress:     viper.GetBool("storage.memory.compress"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// GetServerConfig returns the websocket transport settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:   viper.GetString("server.address"),
		RateLimit: viper.GetFloat64("server.rateLimit"),
		Burst:     viper.GetInt("server.burst"),

		StatusFile:     viper.GetString("server.statusFile"),
		StatusInterval: viper.GetDuration("server.statusInterval"),
	}
}

// GetTelemetryConfig returns the ship track telemetry settings.
func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:       viper.GetBool("influx.enabled"),
		Protocol:      viper.GetString("influx.protocol"),
		Host:          viper.GetString("influx.host"),
		Port:          viper.GetString("influx.port"),
		Token:         viper.GetString("influx.token"),
		Org:           viper.GetString("influx.org"),
		Bucket:        viper.GetString("influx.bucket"),
		BackupDir:     viper.GetString("influx.backupDir"),
		FlushInterval: viper.GetDuration("influx.flushInterval"),
	}
}

// GetGameConfig returns the table defaults.
func GetGameConfig() GameConfig {
	return GameConfig{
		DefaultScaleKm: viper.GetInt("game.defaultScaleKm"),
		PlayerPageID:   viper.GetString("game.playerPageId"),
	}
}

// Validate checks every configuration section. Sections for disabled
// features are skipped.
func Validate() error {
	v := validator.New()

	sections := []any{GetLoggingConfig(), GetStorageConfig(), GetServerConfig(), GetGameConfig()}
	storage := GetStorageConfig()
	if storage.Type == "postgres" {
		sections = append(sections, GetDBConfig())
	}
	if tc := GetTelemetryConfig(); tc.Enabled {
		sections = append(sections, tc)
	}

	for _, s := range sections {
		if err := v.Struct(s); err != nil {
			return formatValidationError(err)
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
