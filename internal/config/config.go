// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSecretKey = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env                string `mapstructure:"APP_ENV"`
	AppName            string `mapstructure:"APP_NAME"`
	Port               string `mapstructure:"PORT"`
	SecretKey          string `mapstructure:"SECRET_KEY"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	SessionTTLHours    int    `mapstructure:"SESSION_TTL_HOURS"`
	PasswordScheme     string `mapstructure:"PASSWORD_SCHEME"`
	PasswordIterations int    `mapstructure:"PASSWORD_ITERATIONS"`
	MailServer         string `mapstructure:"MAIL_SERVER"`
	MailPort           int    `mapstructure:"MAIL_PORT"`
	MailUseSSL         bool   `mapstructure:"MAIL_USE_SSL"`
	MailUsername       string `mapstructure:"MAIL_USERNAME"`
	MailPassword       string `mapstructure:"MAIL_PASSWORD"`
	MailDefaultSender  string `mapstructure:"MAIL_DEFAULT_SENDER"`
	AdminEmail         string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword      string `mapstructure:"ADMIN_PASSWORD"`
	MailDebugEndpoint  bool   `mapstructure:"MAIL_DEBUG_ENDPOINT"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading profile config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_NAME", "MSV Blog")
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("SECRET_KEY", defaultSecretKey)
	viper.SetDefault("DATABASE_URL", "sqlite:///blog.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("PASSWORD_SCHEME", "pbkdf2")
	viper.SetDefault("PASSWORD_ITERATIONS", 600000)
	viper.SetDefault("MAIL_SERVER", "smtp.googlemail.com")
	viper.SetDefault("MAIL_PORT", 465)
	viper.SetDefault("MAIL_USE_SSL", true)
	viper.SetDefault("MAIL_USERNAME", "")
	viper.SetDefault("MAIL_PASSWORD", "")
	viper.SetDefault("MAIL_DEFAULT_SENDER", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("MAIL_DEBUG_ENDPOINT", true)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.PasswordScheme = strings.ToLower(strings.TrimSpace(c.PasswordScheme))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	if c.AdminEmail == "" {
		c.AdminEmail = c.MailDefaultSender
	}
}

// IsProduction reports whether the configuration targets production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.PasswordScheme {
	case "pbkdf2", "bcrypt":
	default:
		return fmt.Errorf("PASSWORD_SCHEME must be pbkdf2 or bcrypt, got %q", c.PasswordScheme)
	}
	if c.PasswordScheme == "pbkdf2" && c.PasswordIterations <= 0 {
		return errors.New("PASSWORD_ITERATIONS must be positive")
	}
	if c.SessionTTLHours <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}

	if c.IsProduction() {
		if c.SecretKey == defaultSecretKey {
			return errors.New("SECRET_KEY must be changed from the default value in production")
		}
		if len(c.SecretKey) < 32 {
			return errors.New("SECRET_KEY must be at least 32 characters in production")
		}
		if c.MailUsername == "" || c.MailPassword == "" {
			return errors.New("MAIL_USERNAME and MAIL_PASSWORD are required in production")
		}
		if c.MailDefaultSender == "" {
			return errors.New("MAIL_DEFAULT_SENDER is required in production")
		}
		if c.MailDebugEndpoint {
			log.Println("WARNING: MAIL_DEBUG_ENDPOINT is enabled in production.")
		}
	} else if len(c.SecretKey) < 32 {
		log.Println("WARNING: SECRET_KEY is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
