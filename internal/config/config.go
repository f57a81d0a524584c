package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// LoadMode selects how the precinct data is held in memory.
type LoadMode string

const (
	LoadLazy  LoadMode = "lazy"
	LoadEager LoadMode = "eager"
)

const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8050
	DefaultCacheSize    = 3
	DefaultSourceCRS    = "EPSG:4326"
	DefaultViewCacheTTL = 10 * time.Minute
	DefaultRateLimitRPS = 10
	// DefaultSimplifyTolerance is the load-time simplification in degrees.
	DefaultSimplifyTolerance = 0.001
)

var (
	ErrMissingTabularPath  = errors.New("CSV_PATH environment variable is required")
	ErrMissingGeometryPath = errors.New("SHP_PATH environment variable is required")
	ErrUnknownLoadMode     = errors.New("LOAD_MODE must be lazy or eager")
	ErrInvalidPort         = errors.New("PORT must be between 1 and 65535")
	ErrInvalidCacheSize    = errors.New("CACHE_SIZE must be positive")
)

// Config holds the server and data source settings.
type Config struct {
	TabularPath  string
	GeometryPath string

	Host string
	Port int

	LoadMode        LoadMode
	CacheSize       int
	SourceCRS       string
	Simplify        float64
	DissolveWorkers int
	RulesFile       string

	// Encoded view cache, disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ViewCacheTTL  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	// Snapshot store. Postgres URLs use postgres, anything else is a sqlite file.
	DatabaseURL string

	AllowedOrigins []string
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - CSV_PATH: tabular results file, .csv or .xlsx (required)
//   - SHP_PATH: precinct geometry, .shp or .geojson (required)
//   - HOST, PORT: listen address (default: 0.0.0.0:8050)
//   - LOAD_MODE: "lazy" loads one state per request, "eager" loads everything at start (default: lazy)
//   - CACHE_SIZE: states kept resident in lazy mode (default: 3)
//   - SOURCE_CRS: CRS assumed when the geometry source declares none (default: EPSG:4326)
//   - SIMPLIFY_TOLERANCE: topology preserving simplification in degrees, 0 disables (default: 0.001)
//   - DISSOLVE_WORKERS: concurrent dissolves (default: number of CPUs)
//   - AGGREGATION_RULES_FILE: YAML column rules replacing the built-in table
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, VIEW_CACHE_TTL_S: encoded view cache
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST: API rate limit, 0 disables (default: 10 rps)
//   - DATABASE_URL: snapshot store for dashctl publish
//   - ALLOWED_ORIGINS: comma separated CORS allow-list
func LoadFromEnv() Config {
	mode := LoadMode(strings.ToLower(strings.TrimSpace(os.Getenv("LOAD_MODE"))))
	if mode == "" {
		mode = LoadLazy
	}
	host := strings.TrimSpace(os.Getenv("HOST"))
	if host == "" {
		host = DefaultHost
	}
	crs := strings.TrimSpace(os.Getenv("SOURCE_CRS"))
	if crs == "" {
		crs = DefaultSourceCRS
	}
	rps := envFloat("RATE_LIMIT_RPS", DefaultRateLimitRPS)

	return Config{
		TabularPath:     strings.TrimSpace(os.Getenv("CSV_PATH")),
		GeometryPath:    strings.TrimSpace(os.Getenv("SHP_PATH")),
		Host:            host,
		Port:            envInt("PORT", DefaultPort),
		LoadMode:        mode,
		CacheSize:       envInt("CACHE_SIZE", DefaultCacheSize),
		SourceCRS:       crs,
		Simplify:        envFloat("SIMPLIFY_TOLERANCE", DefaultSimplifyTolerance),
		DissolveWorkers: envInt("DISSOLVE_WORKERS", runtime.NumCPU()),
		RulesFile:       strings.TrimSpace(os.Getenv("AGGREGATION_RULES_FILE")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		ViewCacheTTL:    time.Duration(envInt("VIEW_CACHE_TTL_S", int(DefaultViewCacheTTL/time.Second))) * time.Second,
		RateLimitRPS:    rps,
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", int(rps)*2),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
	}
}

// Validate checks the settings needed to serve.
func (c Config) Validate() error {
	if c.TabularPath == "" {
		return ErrMissingTabularPath
	}
	if c.GeometryPath == "" {
		return ErrMissingGeometryPath
	}
	if c.LoadMode != LoadLazy && c.LoadMode != LoadEager {
		return fmt.Errorf("%w: %q", ErrUnknownLoadMode, c.LoadMode)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.CacheSize)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
