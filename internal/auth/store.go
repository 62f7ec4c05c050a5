package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/solcache/internal/flightcache"
)

// KeyStore validates API keys and provides a health ping.
type KeyStore interface {
	Validate(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// KeyCreator exposes creation/upsert of API keys for admin and signup
// handlers. Implemented by MongoKeyStore.
type KeyCreator interface {
	Create(ctx context.Context, key string, active bool, owner string) error
}

// MongoKeyStore keeps API keys in a Mongo collection. Validation verdicts go
// through a coalescing cache, so a burst of requests bearing the same key
// costs one Mongo query per TTL window regardless of concurrency. Unknown
// keys are cached as inactive for the same window, which keeps repeated junk
// keys from hammering the database.
type MongoKeyStore struct {
	coll *mongo.Collection
	keys *flightcache.Cache[string, bool]
}

type keyDoc struct {
	Key    string `bson:"key"`
	Active bool   `bson:"active"`
	Owner  string `bson:"owner,omitempty"`
}

// NewMongoKeyStore sets up the collection with a unique index on key. ttl
// bounds how long a validation verdict (positive or negative) is reused.
func NewMongoKeyStore(ctx context.Context, client *mongo.Client, dbName string, ttl time.Duration) (*MongoKeyStore, error) {
	coll := client.Database(dbName).Collection("api_keys")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoKeyStore{
		coll: coll,
		keys: flightcache.New[string, bool](ttl),
	}, nil
}

// Validate reports whether key exists and is active.
func (s *MongoKeyStore) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("missing key")
	}
	active, _, err := s.keys.Get(ctx, key, func(ctx context.Context) (bool, error) {
		var doc keyDoc
		err := s.coll.FindOne(ctx, bson.D{{Key: "key", Value: key}}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return false, nil
			}
			return false, err
		}
		return doc.Active, nil
	})
	return active, err
}

func (s *MongoKeyStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// Create inserts or updates an API key. A verdict already cached for this key
// keeps serving until its window ends; keys are issued before first use, so
// the lag is harmless.
func (s *MongoKeyStore) Create(ctx context.Context, key string, active bool, owner string) error {
	if key == "" {
		return errors.New("missing key")
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: key}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: active}, {Key: "owner", Value: owner}}}},
		options.Update().SetUpsert(true),
	)
	return err
}

// HashPrefix returns the first 8 hex chars of SHA-256(key), safe to log.
func HashPrefix(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}
