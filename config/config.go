package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `yaml:"server_port"`
	ServerHost string `yaml:"server_host"`

	// Generation service configuration
	OpenAIAPIKey      string        `yaml:"-"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"max_tokens"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`

	// Throttle configuration
	ThrottleBackend string        `yaml:"throttle_backend"`
	ThrottleLimit   int           `yaml:"throttle_limit"`
	ThrottleWindow  time.Duration `yaml:"throttle_window"`

	// Redis configuration, used when ThrottleBackend is "redis"
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	// Storage configuration
	OutputDir string `yaml:"output_dir"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix"`
	AWSRegion string `yaml:"aws_region"`

	// CORS
	CORSOrigins []string `yaml:"cors_origins"`

	// Required recipe fields per request kind
	RequiredFieldsIngredients []string `yaml:"required_fields_ingredients"`
	RequiredFieldsMood        []string `yaml:"required_fields_mood"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

const (
	ThrottleBackendMemory = "memory"
	ThrottleBackendRedis  = "redis"
)

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		ServerPort:        "5000",
		ServerHost:        "",
		OpenAIBaseURL:     "",
		Model:             "gpt-4o",
		MaxTokens:         400,
		GenerationTimeout: 60 * time.Second,
		ThrottleBackend:   ThrottleBackendMemory,
		ThrottleLimit:     10,
		ThrottleWindow:    time.Minute,
		RedisHost:         "localhost",
		RedisPort:         "6379",
		OutputDir:         "cocktail_recipes",
		S3Prefix:          "cocktail_recipes",
		CORSOrigins:       []string{"*"},
		RequiredFieldsIngredients: []string{
			"name", "ingredients", "preparation", "glassware", "garnish", "backstory", "image",
		},
		RequiredFieldsMood: []string{
			"name", "ingredients", "preparation", "glassware", "garnish", "backstory",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig creates a new Config from defaults, an optional YAML file,
// environment variables and secrets, in that order of precedence
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	loadEnv(cfg)

	switch env {
	case CI, Development, Test:
		cfg.OpenAIAPIKey = firstNonEmpty(os.Getenv("OPENAI_API_KEY"), readSecretFile(os.Getenv("OPENAI_API_KEY_FILE")), readSecret("openai_api_key"))
		cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), readSecret("redis_password"))
	case Production:
		// Production secrets come only from files
		cfg.OpenAIAPIKey = firstNonEmpty(readSecretFile(os.Getenv("OPENAI_API_KEY_FILE")), readSecret("openai_api_key"))
		cfg.RedisPassword = readSecret("redis_password")
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Model, "OPENAI_MODEL")
	setInt(&cfg.MaxTokens, "OPENAI_MAX_TOKENS")
	setDuration(&cfg.GenerationTimeout, "GENERATION_TIMEOUT")
	setString(&cfg.ThrottleBackend, "THROTTLE_BACKEND")
	setInt(&cfg.ThrottleLimit, "THROTTLE_LIMIT")
	setDuration(&cfg.ThrottleWindow, "THROTTLE_WINDOW")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.OutputDir, "OUTPUT_DIR")
	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setList(&cfg.CORSOrigins, "CORS_ORIGINS")
	setList(&cfg.RequiredFieldsIngredients, "REQUIRED_FIELDS_INGREDIENTS")
	setList(&cfg.RequiredFieldsMood, "REQUIRED_FIELDS_MOOD")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// setDuration accepts Go durations ("90s") or a bare number of seconds
func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	return readSecretFile(filepath.Join(secretsDir, name))
}

func readSecretFile(path string) string {
	if path == "" {
		return ""
	}
	if data, err := os.ReadFile(path); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
