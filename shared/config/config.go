package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"comment-lens/shared/apperrors"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	AI       AIConfig       `yaml:"ai"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type ServerConfig struct {
	Port               int      `yaml:"port"`
	Environment        string   `yaml:"environment"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
}

type AIConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model"`
}

type AnalysisConfig struct {
	CommentPageSize     int64         `yaml:"comment_page_size"`
	MaxComments         int           `yaml:"max_comments"`
	AnalyzerMaxComments int           `yaml:"analyzer_max_comments"`
	RunRetention        time.Duration `yaml:"run_retention"`
	JanitorSpec         string        `yaml:"janitor_spec"`
}

// Load reads configuration from an optional .env file, an optional YAML file
// (CONFIG_FILE, or config.yaml when present) and the environment, in that
// order of precedence, then validates. Missing credentials fail here, before
// any upstream call is attempted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = os.Getenv("GEMINI_MODEL")
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = getIntEnv("PORT", 0)
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = os.Getenv("ENVIRONMENT")
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
			cfg.Server.CORSOrigins = splitAndTrim(origins)
		}
	}
	if cfg.Server.RateLimitPerMinute == 0 {
		cfg.Server.RateLimitPerMinute = getIntEnv("RATE_LIMIT_PER_MINUTE", 0)
	}
	if cfg.Analysis.CommentPageSize == 0 {
		cfg.Analysis.CommentPageSize = int64(getIntEnv("COMMENT_PAGE_SIZE", 0))
	}
	if cfg.Analysis.MaxComments == 0 {
		cfg.Analysis.MaxComments = getIntEnv("MAX_COMMENTS", 0)
	}
	if cfg.Analysis.AnalyzerMaxComments == 0 {
		cfg.Analysis.AnalyzerMaxComments = getIntEnv("ANALYZER_MAX_COMMENTS", 0)
	}
	if cfg.Analysis.RunRetention == 0 {
		cfg.Analysis.RunRetention = getDurationEnv("RUN_RETENTION", 0)
	}
	if cfg.Analysis.JanitorSpec == "" {
		cfg.Analysis.JanitorSpec = os.Getenv("JANITOR_SPEC")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFile merges the YAML config file into c. A missing file is only an
// error when CONFIG_FILE names it explicitly; container deploys often run
// env-only.
func (c *Config) loadFile() error {
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return apperrors.Wrap(apperrors.KindConfiguration, err, "failed to read config file "+path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.Wrap(apperrors.KindConfiguration, err, "failed to parse config file "+path)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 10
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Analysis.CommentPageSize == 0 {
		c.Analysis.CommentPageSize = 100
	}
	if c.Analysis.MaxComments == 0 {
		c.Analysis.MaxComments = 200
	}
	if c.Analysis.AnalyzerMaxComments == 0 {
		c.Analysis.AnalyzerMaxComments = 100
	}
	if c.Analysis.RunRetention == 0 {
		c.Analysis.RunRetention = time.Hour
	}
	if c.Analysis.JanitorSpec == "" {
		c.Analysis.JanitorSpec = "@every 10m"
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return apperrors.New(apperrors.KindConfiguration, "YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}
	if c.AI.APIKey == "" {
		return apperrors.New(apperrors.KindConfiguration, "Gemini API key is required (set GEMINI_API_KEY or ai.api_key)")
	}
	if c.Analysis.CommentPageSize < 1 || c.Analysis.CommentPageSize > 100 {
		return apperrors.Newf(apperrors.KindConfiguration, "comment page size must be between 1 and 100, got %d", c.Analysis.CommentPageSize)
	}
	if c.Analysis.MaxComments < 1 {
		return apperrors.Newf(apperrors.KindConfiguration, "max comments must be positive, got %d", c.Analysis.MaxComments)
	}
	if c.Analysis.AnalyzerMaxComments < 1 {
		return apperrors.Newf(apperrors.KindConfiguration, "analyzer max comments must be positive, got %d", c.Analysis.AnalyzerMaxComments)
	}
	return nil
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
