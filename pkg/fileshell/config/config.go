package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. FILESHELL_CODEC.
const EnvPrefix = "FILESHELL"

// Config holds the shell settings.
type Config struct {
	// Username is the display name used in the banners.
	Username string `toml:"username" split_words:"true"`
	// StartDir is the initial cursor. Empty means the home directory.
	StartDir    string `toml:"start_dir" split_words:"true"`
	LogLevel    string `toml:"log_level" split_words:"true"`
	Codec       string `toml:"codec" split_words:"true"`
	Concurrency int    `toml:"concurrency" split_words:"true"`
	ErrorDetail bool   `toml:"error_detail" split_words:"true"`
	// Locale selects the collation used by ls, as a BCP 47 tag.
	Locale string `toml:"locale" split_words:"true"`
	Prompt string `toml:"prompt" split_words:"true"`
	Color  bool   `toml:"color" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		Codec:       pipeline.DefaultCodec,
		Concurrency: 1,
		Locale:      "und",
		Prompt:      "> ",
		Color:       true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/fileshell/config.toml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "fileshell", "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path and the
// environment, in that order. With an empty path the default location is
// tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, err := pipeline.CodecByName(c.Codec); err != nil {
		return fmt.Errorf("invalid codec: %w", err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return nil
}

// LanguageTag returns the parsed locale, falling back to the root locale.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
