package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets and identifiers are strings, lifetimes
// and costs are ints.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBAutoMigrate  bool   // apply schema.sql and seed lookups on serve
	JWTSecret      string // secret used to sign JWTs
	JWTAlgorithm   string // HS256 | HS384 | HS512
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// CreateCompanyIfMissing lets lead creation resolve a company by name and
	// create it when no company_id is supplied.
	CreateCompanyIfMissing bool

	LogLevel    string   // debug | info | warn | error
	LogFormat   string   // json | console
	CORSOrigins []string // allowed origins, "*" by default

	AMQPURL     string // RabbitMQ URL; empty disables domain events
	EventsQueue string // queue receiving company/lead events
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      must("JWT_SECRET"),
		JWTAlgorithm:   strings.ToUpper(envStr("JWT_ALGORITHM", "HS256")),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		CreateCompanyIfMissing: envBool("CREATE_COMPANY_IF_MISSING", false),

		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFormat:   envStr("LOG_FORMAT", "json"),
		CORSOrigins: splitList(envStr("CORS_ALLOW_ORIGINS", "*")),

		AMQPURL:     amqpURL(),
		EventsQueue: envStr("EVENTS_QUEUE", "crm.events"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
