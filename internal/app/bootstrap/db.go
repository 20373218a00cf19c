// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/indexes"
	"github.com/dalemusser/socraticos/internal/app/system/locks"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
	"github.com/dalemusser/socraticos/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the document store and the lock backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	switch appCfg.StoreBackend {
	case backendMemory:
		logger.Warn("using in-memory document store")
		deps.Store = docstore.NewMemStore()
	default:
		client, err := connectMongo(ctx, appCfg)
		if err != nil {
			logger.Error("MongoDB connect failed", zap.Error(err))
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Store = docstore.NewMongoStore(deps.MongoDatabase, logger)
		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase),
			zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
			zap.Uint64("min_pool", appCfg.MongoMinPoolSize))
	}

	if appCfg.RedisURL == "" {
		logger.Info("using in-process locks; run a single instance")
		deps.Locker = locks.NewLocal()
		return deps, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	rdb, err := locks.DialRedis(pingCtx, appCfg.RedisURL)
	if err != nil {
		logger.Error("redis connect failed", zap.Error(err))
		if deps.MongoClient != nil {
			_ = deps.MongoClient.Disconnect(ctx)
		}
		return DBDeps{}, err
	}
	deps.Redis = rdb
	deps.Locker = locks.NewRedis(rdb, appCfg.LockTTL, logger)
	logger.Info("using redis locks", zap.Duration("lock_ttl", appCfg.LockTTL))

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureSchema creates collections with their JSON-Schema validators and
// reconciles indexes. The memory backend has neither.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("collection validator setup failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
