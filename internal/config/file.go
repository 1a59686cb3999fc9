package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// PHOTO_RENAMER_CREATION_TIME=true.
const EnvPrefix = "PHOTO_RENAMER"

// LoadFile layers an optional config file and PHOTO_RENAMER_* environment
// variables over cfg. The current values of cfg act as defaults, so it is
// called after DefaultConfig and before flags are applied. An empty path
// skips the file and only reads the environment. The file type follows the
// extension (toml, yaml, json).
func LoadFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	v.SetDefault("folders", cfg.Folders)
	v.SetDefault("creation_time", cfg.CreationTime)
	v.SetDefault("recursion", cfg.Recursion)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("undo", cfg.Undo)
	v.SetDefault("dry_run", cfg.DryRun)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("color", string(cfg.ColorMode))
	v.SetDefault("log_file", cfg.LogFile)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: reading config file %s: %v", ErrInvalidConfig, path, err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("%w: decoding config: %v", ErrInvalidConfig, err)
	}
	loaded.ConfigFile = path
	*cfg = loaded
	return nil
}
