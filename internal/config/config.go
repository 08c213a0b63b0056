// Package config loads dataready settings from an optional YAML file,
// a .env file and DATAREADY_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/dataready/internal/llm"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/tracing"
)

const (
	// EnvPrefix marks variables read into the config. A double underscore
	// separates nesting levels: DATAREADY_SERVER__ADDR sets server.addr.
	EnvPrefix = "DATAREADY_"

	// DefaultFile is read when present and no explicit path is given.
	DefaultFile = "dataready.yaml"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       logging.Config  `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	LLM       llm.Config      `koanf:"llm"`
	Speech    SpeechConfig    `koanf:"speech"`
	Tracing   tracing.Config  `koanf:"tracing"`
	Interview InterviewConfig `koanf:"interview"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	// Path is the sqlite file. Empty uses the per-user data directory.
	Path string `koanf:"path"`
}

// SpeechConfig enables the OpenAI speech collaborators. Disabled speech
// leaves the interview text-only.
type SpeechConfig struct {
	Enabled bool                `koanf:"enabled"`
	OpenAI  speech.OpenAIConfig `koanf:"openai"`
}

type InterviewConfig struct {
	// MaxFollowupsPerQuestion caps follow-ups per core question; 0 disables
	// the cap.
	MaxFollowupsPerQuestion int `koanf:"max_followups_per_question" validate:"gte=0,lte=10"`
	// RandomSeed seeds fallback question selection; 0 seeds from the clock.
	RandomSeed uint64 `koanf:"random_seed"`
}

// Default returns the configuration used for keys that are not set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:   *logging.NewDefaultConfig(),
		Store: StoreConfig{Driver: DriverSQLite},
		LLM:   llm.DefaultConfig(),
		Speech: SpeechConfig{
			OpenAI: speech.DefaultOpenAIConfig(),
		},
		Tracing: tracing.Config{ServiceName: "dataready"},
	}
}

// Options control where Load looks.
type Options struct {
	// File is the YAML config path. Empty tries DefaultFile and skips it
	// when missing; an explicit path must exist.
	File string
	// DotEnv is loaded into the process environment before the env
	// provider runs. Empty tries ".env".
	DotEnv string
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	path, required := opts.File, true
	if path == "" {
		path, required = DefaultFile, false
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.ExpandKeys()
	if cfg.Speech.OpenAI.APIKey == "" {
		cfg.Speech.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps DATAREADY_LLM__RETRY__MAX_ATTEMPTS to llm.retry.max_attempts.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Speech.Enabled && c.Speech.OpenAI.APIKey == "" {
		return errors.New("invalid config: speech.openai.api_key is required when speech is enabled")
	}
	return nil
}
