// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/locks"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends built by ConnectDB.
type DBDeps struct {
	// Set only for the mongo backend.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Store docstore.Store

	// Redis is nil when locks are in-process.
	Redis  *redis.Client
	Locker locks.Locker
}
