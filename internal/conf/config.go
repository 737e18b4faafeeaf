// config.go: settings struct and functions to load and access the playlog configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// RotationType defines the log rotation policy for file loggers.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// LogConfig contains settings for a rotating log file.
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // path to log file
	Rotation RotationType // rotation type: daily, weekly or size
	MaxSize  int64        // max size in bytes for size rotation
}

// MainSettings contains top-level application settings.
type MainSettings struct {
	Name string    // station system name, used in logs
	Log  LogConfig // main log settings
}

// ArchiveSettings contains settings for playout log archival.
type ArchiveSettings struct {
	Path      string // root directory for archive files
	Retention int    // days to keep archive files, 0 keeps forever
}

// OutputSettings contains settings for the live log database.
type OutputSettings struct {
	SQLite struct {
		Enabled bool   // true to enable sqlite output
		Path    string // path to sqlite database
	}
	MySQL struct {
		Enabled  bool   // true to enable mysql output
		Username string // mysql database username
		Password string // mysql database user password
		Database string // mysql database name
		Host     string // mysql database host
		Port     string // mysql database port
	}
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug log messages

	Main    MainSettings
	Archive ArchiveSettings
	Output  OutputSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the global settings instance. It is
// safe to call multiple times, the file is read only once.
func Load() (*Settings, error) {
	var loadErr error
	once.Do(func() {
		settings := &Settings{}

		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			loadErr = fmt.Errorf("getting default config paths: %w", err)
			return
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")

		setDefaultConfig()

		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				loadErr = fmt.Errorf("reading config file: %w", err)
				return
			}
			// No config file is fine, defaults apply.
		}

		if err := viper.Unmarshal(settings); err != nil {
			loadErr = fmt.Errorf("unmarshaling config into struct: %w", err)
			return
		}

		settingsMutex.Lock()
		settingsInstance = settings
		settingsMutex.Unlock()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance, nil
}

// Setting returns the current settings instance, loading defaults if
// Load has not been called yet.
func Setting() *Settings {
	settingsMutex.RLock()
	s := settingsInstance
	settingsMutex.RUnlock()
	if s == nil {
		var err error
		if s, err = Load(); err != nil {
			log.Printf("error loading settings: %v", err)
		}
	}
	return s
}

// setDefaultConfig registers default values for all known settings.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("main.name", "playlog")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/playlog.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10*1024*1024)
	viper.SetDefault("archive.path", "archives")
	viper.SetDefault("archive.retention", 0)
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "playlog.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}

// GetDefaultConfigPaths returns the list of directories searched for a
// config file, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "playlog"),
		"/etc/playlog",
	}, nil
}

// GetBasePath expands a possibly relative directory against the working
// directory and ensures it exists.
func GetBasePath(path string) string {
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Printf("error creating directory %s: %v", path, err)
	}
	return path
}
