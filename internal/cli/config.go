package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/manifest"
	"github.com/matzehuels/cargomanifest/pkg/workspace"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var formats = []string{FormatText, FormatJSON, FormatYAML}

// Config holds the settings shared by all commands.
type Config struct {
	Format    string `mapstructure:"format"`
	TargetDir string `mapstructure:"target_dir"`
	Workers   int    `mapstructure:"workers"`
	Manifest  string `mapstructure:"manifest"`
}

func defaultConfig() *Config {
	return &Config{
		Format:    FormatText,
		TargetDir: manifest.DefaultTargetDir,
		Workers:   workspace.DefaultWorkers,
		Manifest:  manifest.DefaultFile,
	}
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if !slices.Contains(formats, c.Format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (want one of %s)", c.Format, strings.Join(formats, ", "))
	}
	if c.Workers <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be positive, got %d", c.Workers)
	}
	return errors.ValidateManifestFilename(c.Manifest)
}

// configDir returns $XDG_CONFIG_HOME/cargomanifest (or the platform
// equivalent), or "" when no user config directory is known.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName)
}

// loadConfig merges defaults, the config file, CARGOMANIFEST_* environment
// variables and the flags bound to v. A missing config file is not an error
// unless file names one explicitly.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); file != "" || !ok {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read config")
		}
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := defaultConfig()
	v.SetDefault("format", def.Format)
	v.SetDefault("target_dir", def.TargetDir)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("manifest", def.Manifest)
}
