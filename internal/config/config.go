package config

import (
	"errors"  // For validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For driver normalization
	"time"    // For TTL settings

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort string // Application port
	AppEnv  string // development, production or test
	IsProd  bool   // Is production environment

	DBDriver   string // mysql, postgres or memory
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name

	JWTSecret string // JWT secret key

	RedisAddr string // Redis server address, empty disables caching
	RedisPass string // Redis password
	RedisDB   int    // Redis database number

	StartingBalance int64 // Balance credited on registration
	MinBet          int64 // Smallest accepted stake
	MaxBet          int64 // Largest accepted stake
	BetStep         int64 // Increment used by the bet +/- controls
	MinWithdrawal   int64 // Smallest withdrawal request
	VIPThreshold    int64 // Balance that unlocks VIP games

	BiasEnabled bool  // Apply the balance ceiling/floor policy
	BiasCeiling int64 // Projected balance that forces a loss
	BiasFloor   int64 // Balance under which a win is forced

	MineRoundTTL time.Duration // Idle time before an active mine round expires
	PaymentTTL   time.Duration // Time before a pending payment is marked failed

	RateLimitPlays  int           // Game plays allowed per user per window
	RateLimitWindow time.Duration // Rate limit window

	PaymentAPIURL        string // Payment provider base URL
	PaymentAPIKey        string // Payment provider API key
	PaymentWebhookSecret string // HMAC secret for provider callbacks
	PaymentCallbackURL   string // Public URL of our webhook endpoint
	PaymentCurrency      string // Currency code sent to the provider

	S3Endpoint  string // S3-compatible endpoint, empty disables avatar uploads
	S3Region    string // S3 region
	S3Bucket    string // Avatar bucket
	S3AccessKey string // Access key ID
	S3SecretKey string // Secret access key
	CDNBaseURL  string // Public base URL for uploaded objects
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     getEnv("DB_NAME", "paywin"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    getInt("REDIS_DB", 0),

		StartingBalance: getInt64("STARTING_BALANCE", 0),
		MinBet:          getInt64("MIN_BET", 200),
		MaxBet:          getInt64("MAX_BET", 10000),
		BetStep:         getInt64("BET_STEP", 100),
		MinWithdrawal:   getInt64("MIN_WITHDRAWAL", 7000),
		VIPThreshold:    getInt64("VIP_THRESHOLD", 50000),

		BiasEnabled: getEnv("BIAS_ENABLED", "true") == "true",
		BiasCeiling: getInt64("BIAS_CEILING", 10000),
		BiasFloor:   getInt64("BIAS_FLOOR", 1000),

		MineRoundTTL: getDuration("MINE_ROUND_TTL", 30*time.Minute),
		PaymentTTL:   getDuration("PAYMENT_TTL", 24*time.Hour),

		RateLimitPlays:  getInt("RATE_LIMIT_PLAYS", 60),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),

		PaymentAPIURL:        os.Getenv("PAYMENT_API_URL"),
		PaymentAPIKey:        os.Getenv("PAYMENT_API_KEY"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		PaymentCallbackURL:   os.Getenv("PAYMENT_CALLBACK_URL"),
		PaymentCurrency:      getEnv("PAYMENT_CURRENCY", "XOF"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		CDNBaseURL:  os.Getenv("CDN_BASE_URL"),
	}
	cfg.IsProd = cfg.AppEnv == "production" || os.Getenv("IS_PROD") == "true"
	if cfg.DBPort == "" {
		cfg.DBPort = defaultPort(cfg.DBDriver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return errors.New("DB_DRIVER must be mysql, postgres or memory")
	}
	if c.AppEnv != "test" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MinBet <= 0 || c.MaxBet < c.MinBet {
		return errors.New("MIN_BET must be positive and not above MAX_BET")
	}
	if c.BetStep <= 0 {
		return errors.New("BET_STEP must be positive")
	}
	if c.BiasFloor >= c.BiasCeiling {
		return errors.New("BIAS_FLOOR must be below BIAS_CEILING")
	}
	return nil
}

// DSN builds the driver specific data source name
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable TimeZone=UTC"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func defaultPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
