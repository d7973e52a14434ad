package config

import (
	"log"
	"os"
	"strconv"

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

	ApifyToken          string
	ApifyTikTokActor    string
	ApifyInstagramActor string
	ApifyBaseURL        string
	ApifyPollSeconds    int
	ApifyMaxWaitSeconds int

	GoogleMapsAPIKey string

	SheetsSpreadsheetID   string
	SheetsCredentialsFile string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ResultsLimit   int

	CSVOutputPath string
	ChromeBin     string
	RenderJS      bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "leadscout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "leadscout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "leads_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ApifyToken:          getEnv("APIFY_API_TOKEN", ""),
		ApifyTikTokActor:    getEnv("APIFY_TIKTOK_ACTOR_ID", "clockworks~tiktok-scraper"),
		ApifyInstagramActor: getEnv("APIFY_INSTAGRAM_ACTOR_ID", "apify~instagram-search-scraper"),
		ApifyBaseURL:        getEnv("APIFY_BASE_URL", "https://api.apify.com"),
		ApifyPollSeconds:    getEnvInt("APIFY_POLL_SECONDS", 5),
		ApifyMaxWaitSeconds: getEnvInt("APIFY_MAX_WAIT_SECONDS", 300),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),

		SheetsSpreadsheetID:   getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsFile: getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", "credentials.json"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ResultsLimit:   getEnvInt("RESULTS_LIMIT", 20),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/leads.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		RenderJS:      getEnvBool("RENDER_JS", false),
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
