package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Optional integrations (MySQL archive,
// RabbitMQ, Redis, Gemini) are enabled by setting their variables and
// degrade to in-process behavior when left empty.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port for the staff API
	BotToken      string // Telegram bot token
	StaffChatID   int64  // Telegram chat the staff notifications go to
	JWTSecret     string // secret used to sign staff API JWTs
	StaffPassHash string // bcrypt hash of the staff API password
	AccessTTLMin  int    // staff access token time-to-live in minutes
	VenueFile     string // path to the venue topology YAML (optional)
	VenueTZ       string // IANA timezone of the venue
	DJName        string // DJ credited on music request notifications
	AMQPURL       string // RabbitMQ URL for the notification queues (optional)
	GeminiAPIKey  string // Gemini key for the AI menu filter (optional)
	DBUser        string // archive database username (optional; empty disables the archive)
	DBPass        string // archive database password
	DBHost        string // archive database host
	DBPort        string // archive database port
	DBName        string // archive database name
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),                       // environment (dev/test/prod)
		Port:          must("APP_PORT"),                      // port to bind the staff API
		BotToken:      must("BOT_TOKEN"),                     // Telegram bot token
		StaffChatID:   mustInt64("GROUP_CHAT_ID"),            // staff notification chat
		JWTSecret:     must("JWT_SECRET"),                    // staff API token secret
		StaffPassHash: must("STAFF_PASSWORD_HASH"),           // staff API password hash
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),       // TTL for staff tokens in minutes
		VenueFile:     os.Getenv("VENUE_FILE"),               // venue YAML; empty uses the built-in layout
		VenueTZ:       getenv("VENUE_TZ", "Asia/Bishkek"),    // venue local timezone
		DJName:        getenv("DJ_NAME", "DJ Nox"),           // credited DJ
		AMQPURL:       os.Getenv("RABBITMQ_URL"),             // notification broker, optional
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),           // AI menu filter, optional
		DBUser:        os.Getenv("DB_USER"),                  // archive DB user; empty disables archive
		DBPass:        os.Getenv("DB_PASS"),                  // archive DB password (empty allowed)
		DBHost:        getenv("DB_HOST", "localhost"),        // archive DB host
		DBPort:        getenv("DB_PORT", "3306"),             // archive DB port
		DBName:        getenv("DB_NAME", "club_reservation"), // archive DB name
	}
}

// ArchiveEnabled reports whether the MySQL reservation archive should
// be opened.
func (c Config) ArchiveEnabled() bool { return c.DBUser != "" }

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

// mustInt64 is like mustInt for 64-bit values such as chat ids.
func mustInt64(key string) int64 {
	s := must(key)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the value of an environment variable or a default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
