package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"macros/internal/infrastructure/logging"
)

type Config struct {
	Locale      string `env:"MACROS_LOCALE"`
	MessagesDir string `env:"MACROS_MESSAGES_DIR"`
	Strict      bool   `env:"MACROS_MESSAGES_STRICT" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL"              envDefault:"info"`
	LogColored  bool   `env:"LOG_COLORED"            envDefault:"true"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (CI, shell).
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Language returns the configured locale as a tag. Call after Load.
func (c *Config) Language() language.Tag {
	return language.Make(c.Locale)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Locale) == "" {
		c.Locale = SystemLocale().String()
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: MACROS_LOCALE invalid (%q): %w", c.Locale, err)
	}

	if c.MessagesDir != "" {
		info, err := os.Stat(c.MessagesDir)
		if err != nil {
			return fmt.Errorf("config: MACROS_MESSAGES_DIR invalid (%q): %w", c.MessagesDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: MACROS_MESSAGES_DIR (%q) is not a directory", c.MessagesDir)
		}
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	return nil
}

// SystemLocale resolves the process locale from the POSIX variables
// LC_ALL, LC_MESSAGES and LANG, in that order. "C", "POSIX" and unparsable
// values yield English.
func SystemLocale() language.Tag {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		return parsePOSIXLocale(v)
	}
	return language.English
}

// parsePOSIXLocale turns values such as "fr_CA.UTF-8@euro" into a tag.
func parsePOSIXLocale(v string) language.Tag {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}
