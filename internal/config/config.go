package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable: strings for identifiers and secrets, ints
// for costs.  The JWT secret signs session tokens; the bcrypt cost is
// shared by password and one-time token hashing.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	MongoURI          string // MongoDB connection string
	MongoDB           string // database name
	JWTSecret         string // secret used to sign session JWTs
	BcryptCost        int    // bcrypt cost for password and token hashing
	SMTPHost          string // outbound mail relay host
	SMTPPort          string // outbound mail relay port
	SMTPUser          string // relay username (optional)
	SMTPPass          string // relay password (optional)
	MailFrom          string // From header on transactional mail
	PasswordResetLink string // base URL embedded in reset emails
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		MongoURI:          must("MONGO_URI"),
		MongoDB:           must("MONGO_DB"),
		JWTSecret:         must("JWT_SECRET"),
		BcryptCost:        mustInt("BCRYPT_COST"),
		SMTPHost:          must("SMTP_HOST"),
		SMTPPort:          must("SMTP_PORT"),
		SMTPUser:          os.Getenv("SMTP_USER"), // empty allowed (sandbox relays)
		SMTPPass:          os.Getenv("SMTP_PASS"),
		MailFrom:          must("MAIL_FROM"),
		PasswordResetLink: must("PASSWORD_RESET_LINK"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
