package config

import (
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"visitpermits/lib/constants"
)

// DownloadURLExpiry is how long a presigned attachment URL stays valid
const DownloadURLExpiry = 15 * time.Minute

// UploadURLExpiry is how long a presigned attachment upload URL stays valid
const UploadURLExpiry = 15 * time.Minute

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Config struct {
	IsLocal  bool
	LogLevel string
	Region   string

	StorageBackend string
	StorageKey     string
	StorageDir     string
	StorageBucket  string
	StoragePrefix  string

	AttachmentBucket string
	Database         DatabaseConfig
	AllowedOrigins   []string

	URLCacheTTL  time.Duration
	URLCacheSize int
}

// Load builds the configuration from SSM parameters keyed by full path.
// An environment variable named after the last path segment wins over SSM.
func Load(params map[string]string) Config {
	r := reader{params: params}
	isLocal := readBool("IS_LOCAL", false)

	defaultBackend := constants.BACKEND_S3
	if isLocal {
		defaultBackend = constants.BACKEND_FILE
	}

	cacheTTL := time.Duration(r.lookupInt(constants.URL_CACHE_TTL_SECONDS, 300)) * time.Second
	switch {
	case cacheTTL <= 0:
		// zero or negative disables the download URL cache
		cacheTTL = 0
	case cacheTTL >= DownloadURLExpiry:
		cacheTTL = DownloadURLExpiry / 2
	}

	return Config{
		IsLocal:  isLocal,
		LogLevel: os.Getenv("LOG_LEVEL"),
		Region:   Region(),

		StorageBackend: strings.ToLower(r.lookup(constants.STORAGE_BACKEND, defaultBackend)),
		StorageKey:     r.lookup(constants.STORAGE_KEY, constants.DEFAULT_STORAGE_KEY),
		StorageDir:     r.lookup(constants.STORAGE_DIR, constants.DEFAULT_STORAGE_DIR),
		StorageBucket:  r.lookup(constants.STORAGE_BUCKET, ""),
		StoragePrefix:  r.lookup(constants.STORAGE_PREFIX, ""),

		AttachmentBucket: r.lookup(constants.ATTACHMENT_BUCKET, ""),
		Database: DatabaseConfig{
			Host:     r.lookup(constants.DATABASE_RDS_ENDPOINT, ""),
			Port:     r.lookup(constants.DATABASE_PORT, "5432"),
			Name:     r.lookup(constants.DATABASE_NAME, ""),
			User:     r.lookup(constants.DATABASE_USERNAME, ""),
			Password: r.lookup(constants.DATABASE_PASSWORD, ""),
			SSLMode:  r.lookup(constants.SSL_MODE, "require"),
		},
		AllowedOrigins: splitList(r.lookup(constants.ALLOWED_ORIGINS, "")),

		URLCacheTTL:  cacheTTL,
		URLCacheSize: readInt("URL_CACHE_SIZE", 256),
	}
}

// Region returns AWS_REGION, falling back to the default deployment region
func Region() string {
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	return constants.DEFAULT_REGION
}

// IsOriginAllowed reports whether origin is in the allowed list. An empty
// list allows nothing.
func (c Config) IsOriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

type reader struct {
	params map[string]string
}

func (r reader) lookup(param, fallback string) string {
	if value := os.Getenv(path.Base(param)); value != "" {
		return value
	}
	if value := strings.TrimSpace(r.params[param]); value != "" {
		return value
	}
	return fallback
}

func (r reader) lookupInt(param string, fallback int) int {
	raw := r.lookup(param, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
