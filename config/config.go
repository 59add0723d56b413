package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	Env               string        `mapstructure:"ENV"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    []string      `mapstructure:"ALLOWED_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	OptionsCacheTTL time.Duration `mapstructure:"OPTIONS_CACHE_TTL"`

	// Outgoing mail.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	SMTPFromName string `mapstructure:"SMTP_FROM_NAME"`
	SMTPSecure   bool   `mapstructure:"SMTP_SECURE"`

	// CSV archive. Archiving is skipped when the cloud name is empty.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	// Operator created at startup when missing.
	BootstrapOperatorEmail    string `mapstructure:"BOOTSTRAP_OPERATOR_EMAIL"`
	BootstrapOperatorName     string `mapstructure:"BOOTSTRAP_OPERATOR_NAME"`
	BootstrapOperatorPassword string `mapstructure:"BOOTSTRAP_OPERATOR_PASSWORD"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables still win.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("TOKEN_TTL", 12*time.Hour)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("OPTIONS_CACHE_TTL", 5*time.Minute)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "ose_platform")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_FROM_NAME", "OSE Platform")
	viper.SetDefault("SMTP_SECURE", false)
	viper.SetDefault("CLOUDINARY_FOLDER", "series-notifications")

	// Keys without a meaningful default still need registering so Unmarshal sees env values.
	for _, key := range []string{
		"JWT_SECRET", "SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
		"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
		"BOOTSTRAP_OPERATOR_EMAIL", "BOOTSTRAP_OPERATOR_NAME", "BOOTSTRAP_OPERATOR_PASSWORD",
	} {
		viper.SetDefault(key, "")
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
