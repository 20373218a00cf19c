// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for socraticos.
//
// These values come from environment variables (SOCRATICOS_*), config
// files, or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig
// covers the framework side (ports, TLS, logging, CORS, body limits).
type AppConfig struct {
	// Document store
	StoreBackend     string // "mongo" or "memory"
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Per-key locks. Empty RedisURL means in-process locks (single instance only).
	RedisURL string
	LockTTL  time.Duration

	// Identity
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: socraticos-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration
	JWTSecret     string // HMAC secret for bearer tokens; empty disables bearer auth
	TokenTTL      time.Duration
	TrustLogin    bool // mounts POST /login, which signs in any user ID without credentials

	// Rate limits per minute; zero disables
	LoginRateLimit int // per client IP on /login
	WriteRateLimit int // per principal (or IP) on /groups

	// Result limits
	DefaultMaxResults int
	MaxResultsCap     int

	// Membership behaviour
	AutoEnrollOnApprove      bool
	MentorOnlyRequestListing bool

	// Audit destinations: all, db, log or off
	AuditLog string

	// Store I/O deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
