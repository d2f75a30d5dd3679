package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Backup  BackupConfig  `mapstructure:"backup"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type StorageConfig struct {
	// Path to the SQLite database holding the primary store.
	Path string `mapstructure:"path"`
	// LegacyPath points at the flat JSON file written by pre-1.0 releases.
	// Migrated into the primary store on first load, then removed.
	LegacyPath string `mapstructure:"legacy_path"`
	// SeedPath optionally overrides the bundled seed dataset.
	SeedPath string `mapstructure:"seed_path"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type BackupConfig struct {
	// Dir receives periodic JSON snapshots. Empty disables the scheduler.
	Dir      string        `mapstructure:"dir"`
	Interval time.Duration `mapstructure:"interval"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", "127.0.0.1:8080")
	viper.SetDefault("server.metrics_address", "127.0.0.1:9100")
	viper.SetDefault("storage.path", "boardvault.db")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("backup.interval", 24*time.Hour)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Defaults plus environment are enough to run without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
