// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/store/audit"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	messagestore "github.com/dalemusser/socraticos/internal/app/store/messages"
	reportstore "github.com/dalemusser/socraticos/internal/app/store/reports"
	requeststore "github.com/dalemusser/socraticos/internal/app/store/requests"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
)

// collectionIndexes pairs a backing collection with its desired indexes.
type collectionIndexes struct {
	name   string
	models []mongo.IndexModel
}

// desired lists every index the stores rely on. Sub-collections share one
// backing collection per kind, so their indexes lead with the parent field.
func desired() []collectionIndexes {
	return []collectionIndexes{
		{groupstore.Collection.Physical(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "tags", Value: 1}, {Key: "title_ci", Value: 1}}, Options: options.Index().SetName("idx_groups_tags_title")},
			{Keys: bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_groups_title")},
		}},
		{messagestore.Collection("").Physical(), []mongo.IndexModel{
			{Keys: bson.D{{Key: docstore.ParentField, Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_chat_parent_ts")},
			{Keys: bson.D{{Key: docstore.ParentField, Value: 1}, {Key: "pinned", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_chat_parent_pinned_ts")},
		}},
		{requeststore.Collection("").Physical(), []mongo.IndexModel{
			{Keys: bson.D{{Key: docstore.ParentField, Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_requests_parent_created")},
		}},
		{reportstore.Collection.Physical(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "reported_at", Value: -1}}, Options: options.Index().SetName("idx_reports_group_reported")},
		}},
		{audit.Collection.Physical(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_group_ts")},
		}},
	}
}

/*
EnsureAll is called at startup. Each collection is reconciled independently
and idempotently. Errors are aggregated so any problem is visible and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, ci := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(ci.name), ci.models, logger); err != nil {
			problems = append(problems, ci.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig))
		start := time.Now()

		ex, found := listExisting(ctx, coll, logger)[desiredSig]
		switch {
		case found && sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName):
			log.Debug("reusing existing index")
			continue

		case found:
			// Same keys under another name or with other options: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			switch {
			case isOptionsConflictErr(err):
				errs = append(errs, fmt.Sprintf("%s(%s): conflicting index options: %v", coll.Name(), desiredName, err))
			case wafflemongo.IsDup(err) && desiredUnique != nil && *desiredUnique:
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			default:
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
