package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Groq     GroqConfig
	Engine   EngineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"careerquest"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

// GroqConfig holds the content generation service configuration
type GroqConfig struct {
	APIKey  string `envconfig:"API_KEY" default:""`
	BaseURL string `envconfig:"API_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"MODEL" default:"llama-3.1-70b-versatile"`
}

// EngineConfig holds conversation engine tuning
type EngineConfig struct {
	// RequireTopicDepth gates topic advancement on the completion policy's
	// per-kind minimum-contribution thresholds instead of the default
	// one-contribution advance.
	RequireTopicDepth bool          `envconfig:"REQUIRE_TOPIC_DEPTH" default:"false"`
	LockTTL           time.Duration `envconfig:"LOCK_TTL" default:"30s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	if err := envconfig.Process("", &config.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("db", &config.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process("redis", &config.Redis); err != nil {
		return nil, fmt.Errorf("failed to load redis config: %w", err)
	}
	if err := envconfig.Process("groq", &config.Groq); err != nil {
		return nil, fmt.Errorf("failed to load groq config: %w", err)
	}
	if err := envconfig.Process("engine", &config.Engine); err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("DB_MAX_CONNS must be >= DB_MIN_CONNS")
	}
	if c.Server.Environment == "production" && c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required in production")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
