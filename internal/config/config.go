package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/RMahshie/farfield/pkg/ffe"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	AWS      AWSConfig
	Parser   ParserConfig
}

// DatabaseConfig holds database configuration. An empty URL keeps the
// dataset catalogue in memory.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	LogLevel       zerolog.Level
}

// AWSConfig holds AWS/S3 configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// ParserConfig controls how FFE files are found, parsed and cached.
type ParserConfig struct {
	DataDir         string
	CacheSize       int
	Workers         int
	DuplicatePolicy ffe.DuplicatePolicy
}

var keys = []string{
	"DATABASE_URL",
	"PORT",
	"ENVIRONMENT",
	"LOG_LEVEL",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"S3_BUCKET",
	"S3_ENDPOINT",
	"ALLOWED_ORIGINS",
	"FFE_DATA_DIR",
	"FFE_CACHE_SIZE",
	"FFE_PARSE_WORKERS",
	"FFE_DUPLICATE_POLICY",
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("FFE_DATA_DIR", "./data")
	v.SetDefault("FFE_CACHE_SIZE", ffe.DefaultCacheSize)
	v.SetDefault("FFE_PARSE_WORKERS", ffe.DefaultWorkers)
	v.SetDefault("FFE_DUPLICATE_POLICY", "first")

	// Environment variables override .env file values
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	env := v.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	// Read .env file (ignore error if file doesn't exist)
	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	v.AddConfigPath(configPath)
	_ = v.ReadInConfig()

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	policy, err := ffe.ParseDuplicatePolicy(v.GetString("FFE_DUPLICATE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid FFE_DUPLICATE_POLICY: %w", err)
	}
	cacheSize := v.GetInt("FFE_CACHE_SIZE")
	if cacheSize < 1 {
		return nil, fmt.Errorf("FFE_CACHE_SIZE must be positive, got %d", cacheSize)
	}
	workers := v.GetInt("FFE_PARSE_WORKERS")
	if workers < 1 {
		return nil, fmt.Errorf("FFE_PARSE_WORKERS must be positive, got %d", workers)
	}

	var config Config
	config.Database.URL = v.GetString("DATABASE_URL")
	config.Server.Port = v.GetString("PORT")
	config.Server.Env = env
	config.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	config.Server.LogLevel = level
	config.AWS.Region = v.GetString("AWS_REGION")
	config.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = v.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = v.GetString("S3_ENDPOINT")
	config.Parser.DataDir = v.GetString("FFE_DATA_DIR")
	config.Parser.CacheSize = cacheSize
	config.Parser.Workers = workers
	config.Parser.DuplicatePolicy = policy

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
