package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trivia-quiz-service/internal/domain"
)

// Question sources.
const (
	SourceOpenTDB  = "opentdb"
	SourcePostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Trivia struct {
		BaseURL       string `yaml:"baseURL"`
		Timeout       string `yaml:"timeout"`
		CategoriesTTL string `yaml:"categoriesTTL"`
		Source        string `yaml:"source"`
	} `yaml:"trivia"`
	Quiz struct {
		QuestionTime  int                      `yaml:"questionTime"`
		Tick          string                   `yaml:"tick"`
		FeedbackDelay string                   `yaml:"feedbackDelay"`
		Defaults      domain.QuizConfiguration `yaml:"defaults"`
	} `yaml:"quiz"`
}

// Load reads .env (if present), then the YAML config at path, then applies
// environment overrides. A missing YAML file yields the defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	cfg.Quiz.Defaults = domain.DefaultConfiguration()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	if cfg.Quiz.Defaults.QuestionCount == 0 {
		cfg.Quiz.Defaults.QuestionCount = domain.DefaultQuestionCount
	}
	if err := cfg.Quiz.Defaults.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("TRIVIA_BASE_URL"); v != "" {
		cfg.Trivia.BaseURL = v
	}
	if v := os.Getenv("TRIVIA_SOURCE"); v != "" {
		cfg.Trivia.Source = v
	}
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
