// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	backendMongo  = "mongo"
	backendMemory = "memory"

	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
)

// appConfigKeys defines the configuration keys for socraticos.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SOCRATICOS_MONGO_URI, SOCRATICOS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: backendMongo, Desc: "Document store backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "socraticos", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Locks
	{Name: "redis_url", Default: "", Desc: "Redis URL for cross-instance locks (blank means in-process locks)"},
	{Name: "lock_ttl", Default: "10s", Desc: "Expiry of a held Redis lock (e.g., 10s)"},

	// Identity
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "socraticos-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for bearer tokens (blank disables bearer auth)"},
	{Name: "token_ttl", Default: "24h", Desc: "Lifetime of tokens issued by /login"},
	{Name: "trust_login", Default: false, Desc: "Mount POST /login, which signs in any user ID (dev and tests only)"},

	// Rate limits
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per minute per client IP (0 disables)"},
	{Name: "write_rate_limit", Default: 0, Desc: "Group requests per minute per caller (0 disables)"},

	// Result limits
	{Name: "default_max_results", Default: limits.DefaultMaxResults, Desc: "maxResults used when a request leaves it at 0"},
	{Name: "max_results_cap", Default: limits.MaxResultsCap, Desc: "Upper bound applied to maxResults"},

	// Membership
	{Name: "auto_enroll_on_approve", Default: true, Desc: "Approving a join request enrolls the requester"},
	{Name: "mentor_only_request_listing", Default: false, Desc: "Only mentors may list a group's join requests"},

	// Audit logging
	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for atomic units including lock waits"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SOCRATICOS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     appValues.String("store_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisURL: appValues.String("redis_url"),
		LockTTL:  appValues.Duration("lock_ttl", 10*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),
		JWTSecret:     appValues.String("jwt_secret"),
		TokenTTL:      appValues.Duration("token_ttl", 24*time.Hour),
		TrustLogin:    appValues.Bool("trust_login"),

		LoginRateLimit: appValues.Int("login_rate_limit"),
		WriteRateLimit: appValues.Int("write_rate_limit"),

		DefaultMaxResults: appValues.Int("default_max_results"),
		MaxResultsCap:     appValues.Int("max_results_cap"),

		AutoEnrollOnApprove:      appValues.Bool("auto_enroll_on_approve"),
		MentorOnlyRequestListing: appValues.Bool("mentor_only_request_listing"),

		AuditLog: appValues.String("audit_log"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. Any error aborts
// startup before a connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case backendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return errors.New("mongo_database is required when store_backend is mongo")
		}
	case backendMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("memory store backend in prod; data is lost on restart")
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want mongo or memory)", appCfg.StoreBackend)
	}

	if appCfg.RedisURL != "" {
		if _, err := redis.ParseURL(appCfg.RedisURL); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}

	if !auditlog.ValidMode(appCfg.AuditLog) {
		return fmt.Errorf("unknown audit_log mode %q", appCfg.AuditLog)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == "" || appCfg.SessionKey == devSessionKey {
			return errors.New("session_key must be set in prod")
		}
		if appCfg.TrustLogin {
			return errors.New("trust_login cannot be enabled in prod")
		}
	}

	if appCfg.LoginRateLimit < 0 || appCfg.WriteRateLimit < 0 {
		return errors.New("rate limits cannot be negative")
	}

	if appCfg.DefaultMaxResults <= 0 || appCfg.MaxResultsCap < appCfg.DefaultMaxResults {
		return fmt.Errorf("default_max_results (%d) must be positive and at most max_results_cap (%d)",
			appCfg.DefaultMaxResults, appCfg.MaxResultsCap)
	}

	return nil
}
