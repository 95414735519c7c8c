package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration

	// HTTP shell
	Addr        string
	GinMode     string
	StaticDir   string
	CORSOrigins []string

	// Fare table: FareSource is "file" or "sql". An empty FareTablePath uses
	// the embedded default table; an empty FareQuery the default fares query.
	FareSource    string
	FareTablePath string
	FareQuery     string

	// Notifications
	SearchWebhookURL  string
	StationWebhookURL string
	ErrorWebhookURL   string
	NotifyBuffer      int

	// Snapshot archive
	ArchiveBucket string
	ArchiveSeed   bool

	// Chat bot
	ServerURL       string
	DiscordBotToken string

	Store *StoreConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

func WithGinMode(mode string) Option {
	return func(c *Config) {
		c.GinMode = mode
	}
}

func WithStaticDir(dir string) Option {
	return func(c *Config) {
		c.StaticDir = dir
	}
}

// WithCORSOrigins takes a comma separated origin list. Empty allows all origins.
func WithCORSOrigins(origins string) Option {
	return func(c *Config) {
		c.CORSOrigins = splitList(origins)
	}
}

func WithFareTable(source, path string) Option {
	return func(c *Config) {
		c.FareSource = source
		c.FareTablePath = path
	}
}

// WithFareQuery overrides the query used when FareSource is "sql".
func WithFareQuery(query string) Option {
	return func(c *Config) {
		c.FareQuery = strings.TrimSpace(query)
	}
}

func WithWebhooks(search, station, errs string) Option {
	return func(c *Config) {
		c.SearchWebhookURL = search
		c.StationWebhookURL = station
		c.ErrorWebhookURL = errs
	}
}

func WithNotifyBuffer(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.NotifyBuffer = size
		}
	}
}

func WithArchive(bucket string, seed bool) Option {
	return func(c *Config) {
		c.ArchiveBucket = bucket
		c.ArchiveSeed = seed
	}
}

func WithBot(serverURL, token string) Option {
	return func(c *Config) {
		c.ServerURL = serverURL
		c.DiscordBotToken = token
	}
}

func WithStore(store *StoreConfig) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:  "production",
		LogLevel:     zerolog.InfoLevel,
		HTTPTimeout:  10 * time.Second,
		Addr:         ":3000",
		StaticDir:    "public",
		FareSource:   "file",
		NotifyBuffer: 256,
		ServerURL:    "http://localhost:3000",
		Store:        DefaultStoreConfig(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		return
	}

	log.Logger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}

// LoadFromEnv loads configuration from environment variables, reading a
// .env file first when one exists.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithAddr(getEnvOrDefault("APP_ADDR", ":"+getEnvOrDefault("PORT", "3000"))),
		WithGinMode(os.Getenv("GIN_MODE")),
		WithStaticDir(getEnvOrDefault("STATIC_DIR", "public")),
		WithCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		WithFareTable(getEnvOrDefault("FARE_SOURCE", "file"), os.Getenv("FARE_TABLE_PATH")),
		WithFareQuery(os.Getenv("FARE_SQL_QUERY")),
		WithWebhooks(
			os.Getenv("DISCORD_WEBHOOK_SEARCH"),
			os.Getenv("DISCORD_WEBHOOK_STATION"),
			os.Getenv("DISCORD_WEBHOOK_ERROR"),
		),
		WithNotifyBuffer(getEnvInt("NOTIFY_BUFFER", 256)),
		WithArchive(os.Getenv("ARCHIVE_BUCKET"), getEnvBool("ARCHIVE_SEED", false)),
		WithBot(getEnvOrDefault("SERVER_URL", "http://localhost:3000"), os.Getenv("DISCORD_BOT_TOKEN")),
		WithStore(GetStoreConfig()),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
