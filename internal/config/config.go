// Package config loads studyagent settings from a YAML file, a .env file
// and STUDYAGENT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/mastery"
)

// Config is the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	LLM    LLMConfig    `yaml:"llm"`
	Study  StudyConfig  `yaml:"study"`
	Lock   LockConfig   `yaml:"lock"`
	Notify NotifyConfig `yaml:"notify"`
	Log    LogConfig    `yaml:"log"`
}

// StoreConfig selects the database.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`    // empty = default SQLite path
}

// LLMConfig overrides the provider settings discovered from the
// environment. API keys are only read from the environment.
type LLMConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryAttempts  *int   `yaml:"retry_attempts"`
	Breaker        *bool  `yaml:"breaker"`
}

// StudyConfig controls scheduling and grading.
type StudyConfig struct {
	Policy            string  `yaml:"policy"` // streak | eager
	StreakThreshold   int     `yaml:"streak_threshold"`
	EvalMode          string  `yaml:"eval_mode"`      // labeled | scored
	QuestionStyle     string  `yaml:"question_style"` // labeled | plain
	ReviewProbability float64 `yaml:"review_probability"`
}

// LockConfig enables the Redis locker when RedisAddr is set.
type LockConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// NotifyConfig enables AMQP event publishing when URL is set.
type NotifyConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite"},
		Study: StudyConfig{
			Policy:            mastery.PolicyStreak,
			StreakThreshold:   mastery.DefaultStreakThreshold,
			EvalMode:          "labeled",
			QuestionStyle:     "labeled",
			ReviewProbability: 0.3,
		},
		Lock:   LockConfig{TTLSeconds: 30},
		Notify: NotifyConfig{Exchange: "studyagent.events"},
		Log:    LogConfig{Level: "warn", Format: "console"},
	}
}

// DefaultPath resolves the config file path:
// 1. STUDYAGENT_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/studyagent/config.yaml
// 3. ~/.config/studyagent/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("STUDYAGENT_CONFIG"); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "studyagent", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "studyagent", "config.yaml"), nil
}

// Load reads configuration. An explicit path must exist; when path is
// empty the default path is used if present. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Store.Driver, "STUDYAGENT_STORE_DRIVER")
	setString(&cfg.Store.DSN, "STUDYAGENT_STORE_DSN")
	setString(&cfg.LLM.Provider, "STUDYAGENT_LLM_PROVIDER")
	setString(&cfg.Study.Policy, "STUDYAGENT_POLICY")
	setString(&cfg.Study.EvalMode, "STUDYAGENT_EVAL_MODE")
	setString(&cfg.Study.QuestionStyle, "STUDYAGENT_QUESTION_STYLE")
	setString(&cfg.Lock.RedisAddr, "STUDYAGENT_REDIS_ADDR")
	setString(&cfg.Notify.AMQPURL, "STUDYAGENT_AMQP_URL")
	setString(&cfg.Notify.Exchange, "STUDYAGENT_AMQP_EXCHANGE")
	setString(&cfg.Log.Level, "STUDYAGENT_LOG_LEVEL")
	setString(&cfg.Log.Format, "STUDYAGENT_LOG_FORMAT")

	if v := os.Getenv("STUDYAGENT_STREAK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Study.StreakThreshold = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for postgres")
	}
	if _, err := mastery.PolicyByName(c.Study.Policy, c.Study.StreakThreshold); err != nil {
		return err
	}
	switch c.Study.EvalMode {
	case "labeled", "scored":
	default:
		return fmt.Errorf("unknown eval mode %q", c.Study.EvalMode)
	}
	switch c.Study.QuestionStyle {
	case "labeled", "plain":
	default:
		return fmt.Errorf("unknown question style %q", c.Study.QuestionStyle)
	}
	if p := c.Study.ReviewProbability; p < 0 || p > 1 {
		return fmt.Errorf("review_probability must be between 0 and 1, got %v", p)
	}
	return nil
}

// Policy returns the configured promotion policy.
func (c *Config) Policy() mastery.Policy {
	p, err := mastery.PolicyByName(c.Study.Policy, c.Study.StreakThreshold)
	if err != nil {
		return mastery.StreakPolicy{Threshold: c.Study.StreakThreshold}
	}
	return p
}

// LockTTL returns the Redis lock TTL.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Lock.TTLSeconds) * time.Second
}

// ProviderConfig builds the LLM configuration. A configured provider wins;
// when the STUDYAGENT_* variables do not yield a usable provider, one is
// discovered from the standard API key variables.
func (c *Config) ProviderConfig() llm.Config {
	cfg := llm.ConfigFromEnv()

	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	} else if cfg.Validate() != nil {
		if d, ok := llm.DiscoverConfig(); ok {
			d.Retry, d.Breaker, d.Timeout = cfg.Retry, cfg.Breaker, cfg.Timeout
			cfg = d
		}
	}

	if m := c.LLM.Model; m != "" {
		switch cfg.Provider {
		case "anthropic":
			cfg.Anthropic.Model = m
		case "openai":
			cfg.OpenAI.Model = m
		case "gemini":
			cfg.Gemini.Model = m
		case "openrouter":
			cfg.OpenRouter.Model = m
		}
	}
	if c.LLM.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.LLM.TimeoutSeconds) * time.Second
	}
	if c.LLM.RetryAttempts != nil {
		cfg.Retry.MaxAttempts = *c.LLM.RetryAttempts
	}
	if c.LLM.Breaker != nil {
		cfg.Breaker.Enabled = *c.LLM.Breaker
	}
	return cfg
}
