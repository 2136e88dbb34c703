package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	BotToken string
	AdminIDs []int64

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	DataDir   string
	ConfigDir string

	// Cron specs for the three scheduled jobs.
	ScrapeSpec        string
	WeeklyReportSpec  string
	MonthlyReportSpec string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "fstock"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "fstock123"),
		PostgresDB:       getEnv("POSTGRES_DB", "fstock_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		BotToken: getEnv("BOT_TOKEN", ""),
		AdminIDs: getEnvInt64List("ADMIN_IDS", []int64{804361300}),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		DataDir:   getEnv("DATA_DIR", "data"),
		ConfigDir: getEnv("CONFIG_DIR", "configs"),

		ScrapeSpec:        getEnv("SCRAPE_CRON", "50 9 * * 2"),
		WeeklyReportSpec:  getEnv("WEEKLY_REPORT_CRON", "0 10 * * 2"),
		MonthlyReportSpec: getEnv("MONTHLY_REPORT_CRON", "0 10 1 * *"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64List(key string, fallback []int64) []int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var ids []int64
	for _, part := range strings.Split(val, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fallback
	}
	return ids
}
