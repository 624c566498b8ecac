package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// MongoStore implements contracts.Store over a MongoDB collection.
// Uniqueness of the business key is backed by a unique index, created by
// EnsureIndexes at startup; the orchestrator pre-checks the key too so
// both backends fail the same way.
type MongoStore struct {
	coll   *mongo.Collection
	entity models.Entity
}

// NewMongoStore binds a store to one entity's collection.
func NewMongoStore(db *mongo.Database, entity models.Entity) *MongoStore {
	return &MongoStore{
		coll:   db.Collection(entity.Name),
		entity: entity,
	}
}

// EnsureIndexes creates the unique index on the business key.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: s.entity.KeyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on %s.%s: %w", s.entity.Name, s.entity.KeyField, err)
	}
	return nil
}

// FindAll returns every record matching the filter.
func (s *MongoStore) FindAll(ctx context.Context, f query.Filter) ([]domain.Record, error) {
	cursor, err := s.coll.Find(ctx, f.Bson())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.entity.Name, err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s results: %w", s.entity.Name, err)
	}

	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromBsonDoc(doc))
	}
	return records, nil
}

// FindOne returns the single record matching the filter.
func (s *MongoStore) FindOne(ctx context.Context, f query.Filter) (domain.Record, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, f.Bson()).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from %s: %w", s.entity.Name, err)
	}
	return fromBsonDoc(doc), nil
}

// Insert persists a new record. A unique-index violation surfaces as
// domain.ErrDuplicateKey.
func (s *MongoStore) Insert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", s.entity.Name, err)
	}
	return rec.Clone(), nil
}

// Replace overwrites the record located by the filter. The filter holds
// the pre-update key, so a record whose business key changed still
// replaces the original document rather than matching nothing.
func (s *MongoStore) Replace(ctx context.Context, f query.Filter, rec domain.Record) (domain.Record, error) {
	res, err := s.coll.ReplaceOne(ctx, f.Bson(), rec)
	if err != nil {
		return nil, fmt.Errorf("failed to replace in %s: %w", s.entity.Name, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

// Delete physically removes the record with the given business key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{s.entity.KeyField: key})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.entity.Name, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PatchFields sets individual fields via $set, bypassing the audit flow.
func (s *MongoStore) PatchFields(ctx context.Context, key string, fields map[string]any) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{s.entity.KeyField: key}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", s.entity.Name, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns how many documents match the filter.
func (s *MongoStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, f.Bson())
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.entity.Name, err)
	}
	return n, nil
}

// fromBsonDoc converts a decoded BSON document into a Record, stripping the
// driver's _id and normalizing BSON container and date types so records
// from both backends compare equal.
func fromBsonDoc(doc bson.M) domain.Record {
	rec := domain.Record{}
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		rec[k] = fromBsonValue(v)
	}
	return rec
}

func fromBsonValue(v any) any {
	switch tv := v.(type) {
	case bson.M:
		out := map[string]any{}
		for k, e := range tv {
			out[k] = fromBsonValue(e)
		}
		return out
	case bson.D:
		out := map[string]any{}
		for _, e := range tv {
			out[e.Key] = fromBsonValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = fromBsonValue(e)
		}
		return out
	case primitive.DateTime:
		return tv.Time().UTC()
	case primitive.ObjectID:
		return tv.Hex()
	default:
		return v
	}
}

var _ contracts.Store = (*MongoStore)(nil)
