package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/sirupsen/logrus" // logrus reports configuration errors and halts execution
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database connection values depend on the
// selected driver: mysql uses the DB_* parts, postgres and sqlite use DB_DSN.
type Config struct {
	Env                  string // application environment (e.g. "dev", "prod")
	Port                 string // HTTP port to listen on
	LogLevel             string // logrus level name
	DBDriver             string // mysql | postgres | sqlite
	DBUser               string // database username (mysql)
	DBPass               string // database password (optional)
	DBHost               string // database host address (mysql)
	DBPort               string // database port number (mysql)
	DBName               string // database name (mysql)
	DBDSN                string // full DSN for postgres / sqlite
	JWTSecret            string // secret used to sign JWTs
	AccessTTLMin         int    // access token time-to-live in minutes
	RefreshTTLDays       int    // refresh token time-to-live in days
	BcryptCost           int    // bcrypt cost for password hashing
	StrictOwnership      bool   // police may only manage applications on their own opportunities
	TokenCleanupSchedule string // cron spec for purging stale refresh tokens
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:                  must("APP_ENV"),
		Port:                 must("APP_PORT"),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		DBDriver:             envStr("DB_DRIVER", "mysql"),
		DBPass:               os.Getenv("DB_PASS"), // empty allowed
		JWTSecret:            must("JWT_SECRET"),
		AccessTTLMin:         mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:       mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:           mustInt("BCRYPT_COST"),
		StrictOwnership:      envBool("STRICT_OWNERSHIP", false),
		TokenCleanupSchedule: envStr("TOKEN_CLEANUP_SCHEDULE", "@hourly"),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	} else {
		cfg.DBDSN = must("DB_DSN")
	}
	return cfg
}

// IsProd reports whether the service runs in the production environment.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logrus.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		logrus.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
