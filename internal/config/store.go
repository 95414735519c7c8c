package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// StoreConfig holds all station store settings
type StoreConfig struct {
	Backend string

	// SQL backends
	DSN string

	// DynamoDB backend
	DynamoTable    string
	DynamoEndpoint string

	// Batch processing settings
	BatchSize       int
	MaxBatchRetries int

	// LRU lookup cache in front of remote backends. Entries are only
	// invalidated by writes through the same process, so leave it off when
	// several instances share one backend.
	EnableLRU     bool
	LRUSize       int
	LRUTTLSeconds int
}

const (
	defaultDynamoTable     = "stations"
	defaultBatchSize       = 25
	defaultMaxBatchRetries = 3
	defaultLRUSize         = 1000
	defaultLRUTTLSeconds   = 60
)

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend:         BackendMemory,
		DynamoTable:     defaultDynamoTable,
		BatchSize:       defaultBatchSize,
		MaxBatchRetries: defaultMaxBatchRetries,
		EnableLRU:       false,
		LRUSize:         defaultLRUSize,
		LRUTTLSeconds:   defaultLRUTTLSeconds,
	}
}

// GetStoreConfig returns the store configuration from environment variables or defaults
func GetStoreConfig() *StoreConfig {
	config := &StoreConfig{
		Backend:         strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendMemory)),
		DSN:             os.Getenv("DATABASE_DSN"),
		DynamoTable:     getEnvOrDefault("DYNAMODB_TABLE", defaultDynamoTable),
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		BatchSize:       getEnvInt("STORE_BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries: getEnvInt("STORE_MAX_BATCH_RETRIES", defaultMaxBatchRetries),
		EnableLRU:       getEnvBool("STORE_LRU_ENABLE", false),
		LRUSize:         getEnvInt("STORE_LRU_SIZE", defaultLRUSize),
		LRUTTLSeconds:   getEnvInt("STORE_LRU_TTL_SECONDS", defaultLRUTTLSeconds),
	}

	log.Debug().
		Str("Backend", config.Backend).
		Str("DynamoTable", config.DynamoTable).
		Int("BatchSize", config.BatchSize).
		Int("MaxBatchRetries", config.MaxBatchRetries).
		Bool("EnableLRU", config.EnableLRU).
		Int("LRUSize", config.LRUSize).
		Int("LRUTTLSeconds", config.LRUTTLSeconds).
		Msg("Store configuration loaded")

	return config
}

func (c *StoreConfig) GetLRUTTL() time.Duration {
	return time.Duration(c.LRUTTLSeconds) * time.Second
}

// Remote reports whether the backend lives outside the process.
func (c *StoreConfig) Remote() bool {
	return c.Backend != BackendMemory
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
