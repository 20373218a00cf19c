// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/socraticos/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/socraticos/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/socraticos/internal/app/features/groups"
	healthfeature "github.com/dalemusser/socraticos/internal/app/features/health"
	loginfeature "github.com/dalemusser/socraticos/internal/app/features/login"
	logoutfeature "github.com/dalemusser/socraticos/internal/app/features/logout"
	usersfeature "github.com/dalemusser/socraticos/internal/app/features/users"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	"github.com/dalemusser/socraticos/internal/app/services/chataccess"
	"github.com/dalemusser/socraticos/internal/app/services/membership"
	"github.com/dalemusser/socraticos/internal/app/services/moderation"
	"github.com/dalemusser/socraticos/internal/app/store/audit"
	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/socraticos/internal/app/system/locks"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
	"github.com/dalemusser/socraticos/internal/app/system/ratelimit"
	"github.com/dalemusser/socraticos/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// services bundles the core services the routing layer calls.
type services struct {
	catalog    *catalog.Service
	membership *membership.Service
	chat       *chataccess.Service
	moderation *moderation.Service
}

func buildServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) services {
	id := auth.ContextIdentity{}
	results := limits.Results{Default: appCfg.DefaultMaxResults, Cap: appCfg.MaxResultsCap}

	var locker locks.Locker = deps.Locker
	if locker == nil {
		locker = locks.NewLocal()
	}
	runner := txn.New(deps.Store, locker, logger)

	auditLog := auditlog.New(audit.New(deps.Store), logger, auditlog.Config{
		Membership: appCfg.AuditLog,
		Moderation: appCfg.AuditLog,
	})

	return services{
		catalog: catalog.New(deps.Store, id, auditLog, results, logger),
		membership: membership.New(runner, id, auditLog, membership.Config{
			AutoEnrollOnApprove:      appCfg.AutoEnrollOnApprove,
			MentorOnlyRequestListing: appCfg.MentorOnlyRequestListing,
		}, logger),
		chat:       chataccess.New(deps.Store, id, results, logger),
		moderation: moderation.New(runner, id, auditLog, logger),
	}
}

// BuildHandler constructs the root HTTP handler.
//
// Every request passes through metrics and principal loading; the
// principal comes from a bearer token or the session cookie and is
// absent for anonymous callers. Services decide what anonymous callers
// may do.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	var tokens *auth.TokenVerifier
	if appCfg.JWTSecret != "" {
		tokens = auth.NewTokenVerifier(appCfg.JWTSecret)
	} else {
		logger.Info("jwt_secret not set; bearer tokens disabled")
	}

	svc := buildServices(appCfg, deps, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(auth.LoadPrincipal(sessionMgr, tokens, logger))
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	backend := appCfg.StoreBackend
	if backend == "" {
		backend = backendMongo
	}
	healthHandler := healthfeature.NewHandler(deps.Store, backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.Handler())

	// Authentication
	if appCfg.TrustLogin {
		logger.Warn("trust login enabled; any caller can sign in as any user")
		loginHandler := loginfeature.NewHandler(sessionMgr, tokens, appCfg.TokenTTL, errLog, logger)
		r.With(limitPerMinute(appCfg.LoginRateLimit, ratelimit.ClientIP)...).
			Mount("/login", loginfeature.Routes(loginHandler))
	}

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	usersHandler := usersfeature.NewHandler(deps.Store, auth.ContextIdentity{}, errLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Groups: catalog, membership, chat history, moderation
	groupsHandler := groupsfeature.NewHandler(svc.catalog, svc.membership, svc.chat, svc.moderation, errLog, logger)
	r.With(limitPerMinute(appCfg.WriteRateLimit, ratelimit.PrincipalOrIP)...).
		Mount("/groups", groupsfeature.Routes(groupsHandler))

	auditHandler := auditlogfeature.NewHandler(deps.Store, auth.ContextIdentity{}, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}

// limitPerMinute returns the rate limiting middleware for n requests per
// minute per key, or none when n is zero.
func limitPerMinute(n int, key func(*http.Request) string) []func(http.Handler) http.Handler {
	if n <= 0 {
		return nil
	}
	l := ratelimit.New(n, time.Minute)
	return []func(http.Handler) http.Handler{ratelimit.Middleware(l, key, errorsfeature.TooManyRequests)}
}
