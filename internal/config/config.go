package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-authgate/dbrealm/internal/realm"

	"github.com/joho/godotenv"
)

// Cache driver constants
const (
	CacheDriverNone   = "none"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Realm settings
	RolePrefix            string
	EnableAuthorities     bool
	EnableGroups          bool
	UsernameFromDB        bool // canonical identifier: database value vs caller value
	UsersQuery            string
	AuthoritiesQuery      string
	GroupAuthoritiesQuery string

	// Principal cache
	CacheDriver   string // "none", "memory" or "redis"
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Metrics
	MetricsEnabled bool

	// Bootstrap
	SeedAdmin bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "realm.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		// Realm settings
		RolePrefix:            getEnv("REALM_ROLE_PREFIX", ""),
		EnableAuthorities:     getEnvBool("REALM_ENABLE_AUTHORITIES", true),
		EnableGroups:          getEnvBool("REALM_ENABLE_GROUPS", false),
		UsernameFromDB:        getEnvBool("REALM_USERNAME_FROM_DB", true),
		UsersQuery:            getEnv("REALM_USERS_QUERY", ""),
		AuthoritiesQuery:      getEnv("REALM_AUTHORITIES_QUERY", ""),
		GroupAuthoritiesQuery: getEnv("REALM_GROUP_AUTHORITIES_QUERY", ""),

		// Principal cache
		CacheDriver:   getEnv("CACHE_DRIVER", CacheDriverNone),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		SeedAdmin: getEnvBool("SEED_ADMIN", false),
	}
}

// Validate checks startup configuration coherence. The authority-source
// invariant is checked again by realm.New; catching it here turns a
// lookup-time surprise into a boot failure.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
	}

	if !c.EnableAuthorities && !c.EnableGroups {
		return fmt.Errorf(
			"invalid realm settings: %w", realm.ErrNoAuthoritySource)
	}

	switch c.CacheDriver {
	case CacheDriverNone, CacheDriverMemory, CacheDriverRedis:
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.CacheDriver)
	}
	if c.CacheDriver == CacheDriverRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis cache driver")
	}
	if c.CacheDriver != CacheDriverNone && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}

	return nil
}

// RealmOptions converts the realm-related settings to resolver options.
func (c *Config) RealmOptions() realm.Options {
	opts := realm.DefaultOptions()
	opts.UsersQuery = c.UsersQuery
	opts.AuthoritiesQuery = c.AuthoritiesQuery
	opts.GroupAuthoritiesQuery = c.GroupAuthoritiesQuery
	opts.RolePrefix = c.RolePrefix
	opts.UseStoreUsername = c.UsernameFromDB
	opts.EnableAuthorities = c.EnableAuthorities
	opts.EnableGroups = c.EnableGroups
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
