package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modrules-dev/modrules/internal/branding"
	"github.com/modrules-dev/modrules/internal/platform"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known configuration keys.
const (
	KeyEngineRoot = "engine_root"
	KeyPlatform   = "platform"
	KeyFormat     = "format"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
)

// Keys lists every key `config set` accepts.
var Keys = []string{KeyEngineRoot, KeyPlatform, KeyFormat, KeyLogLevel, KeyLogFormat}

var defaults = map[string]string{
	KeyFormat:    "text",
	KeyLogLevel:  "warn",
	KeyLogFormat: "text",
}

// Dir returns the path to the config directory (~/.modrules/).
// MODRULES_HOME overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.modrules/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from .env, the config file and the
// environment, in increasing order of precedence.
func Load() {
	// Ignore a missing .env; it is optional.
	_ = godotenv.Load()

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// ErrUnknownKey is returned by Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalidValue is returned by Set when a value is not accepted for its key.
var ErrInvalidValue = errors.New("invalid config value")

// choices lists the accepted values of enumerated keys.
var choices = map[string][]string{
	KeyFormat:    {"text", "json", "yaml"},
	KeyLogLevel:  {"debug", "info", "warn", "error"},
	KeyLogFormat: {"text", "json"},
}

// checkValue rejects values that resolve or the logger would refuse later.
func checkValue(key, value string) error {
	if key == KeyPlatform {
		if _, err := platform.Parse(value); err != nil {
			return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
		}
		return nil
	}
	if allowed, ok := choices[key]; ok && !slices.Contains(allowed, value) {
		return fmt.Errorf("%w %q for %s (expected one of %s)", ErrInvalidValue, value, key, strings.Join(allowed, ", "))
	}
	return nil
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !isKnown(key) {
		return fmt.Errorf("%w %q (known keys: %v)", ErrUnknownKey, key, Keys)
	}
	if err := checkValue(key, value); err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isKnown(key string) bool {
	return slices.Contains(Keys, key)
}
