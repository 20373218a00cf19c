// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/store/audit"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	messagestore "github.com/dalemusser/socraticos/internal/app/store/messages"
	reportstore "github.com/dalemusser/socraticos/internal/app/store/reports"
	requeststore "github.com/dalemusser/socraticos/internal/app/store/requests"
	userstore "github.com/dalemusser/socraticos/internal/app/store/users"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Validators run at the "moderate" level, so documents that were already
// malformed are left alone and still surface as corrupt records on read.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(groupstore.Collection.Physical(), groupsSchema())
	ensure(userstore.Collection.Physical(), usersSchema())
	ensure(messagestore.Collection("").Physical(), messagesSchema())
	ensure(requeststore.Collection("").Physical(), requestsSchema())
	ensure(reportstore.Collection.Physical(), reportsSchema())
	ensure(audit.Collection.Physical(), auditSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			logger.Debug("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrorMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank    = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	idList      = bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}}
	versionType = bson.M{"bsonType": bson.A{"long", "int"}, "minimum": 0}
)

func roleEnum() bson.M {
	return bson.M{"enum": bson.A{string(models.RoleStudent), string(models.RoleMentor)}}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "title_ci", "students", "mentors"},
			"properties": bson.M{
				"title":       nonBlank,
				"title_ci":    nonBlank,
				"description": bson.M{"bsonType": "string"},
				"tags":        idList,
				"students":    idList,
				"mentors":     idList,
				"version":     versionType,
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"enrollments": idList,
				"mentorships": idList,
				"version":     versionType,
			},
		},
	}
}

func messagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{docstore.ParentField, "group_id", "timestamp", "pinned"},
			"properties": bson.M{
				docstore.ParentField: nonBlank,
				"group_id":           nonBlank,
				"author_id":          bson.M{"bsonType": "string"},
				"text":               bson.M{"bsonType": "string"},
				"timestamp":          bson.M{"bsonType": "date"},
				"pinned":             bson.M{"bsonType": "bool"},
				"version":            versionType,
			},
		},
	}
}

func requestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{docstore.ParentField, "user_id", "role", "created_at"},
			"properties": bson.M{
				docstore.ParentField: nonBlank,
				"user_id":            nonBlank,
				"role":               roleEnum(),
				"reason":             bson.M{"bsonType": "string"},
				"approved":           bson.M{"bsonType": "bool"},
				"judged_by":          bson.M{"bsonType": "string"},
				"judged_at":          bson.M{"bsonType": "date"},
				"created_at":         bson.M{"bsonType": "date"},
				"version":            versionType,
			},
		},
	}
}

func reportsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "message", "reported_by", "reported_at"},
			"properties": bson.M{
				"group_id":    nonBlank,
				"message":     bson.M{"bsonType": "object"},
				"reported_by": nonBlank,
				"reported_at": bson.M{"bsonType": "date"},
				"reason":      bson.M{"bsonType": "string"},
			},
		},
	}
}

func auditSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{audit.CategoryMembership, audit.CategoryModeration}},
				"event_type": nonBlank,
			},
		},
	}
}
