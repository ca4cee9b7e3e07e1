package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
)

// DefaultDatabase and DefaultCollection name where documents are kept
// unless the URI or caller says otherwise.
const (
	DefaultDatabase   = "linkscope"
	DefaultCollection = "graphs"
)

// MongoStore stores documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo connects to uri, pings the server and ensures the hash index
// exists. An empty database selects the URI's default database, falling
// back to [DefaultDatabase].
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(fmt.Errorf("ping mongo: %w", err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if database == "" {
		database = DefaultDatabase
	}
	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "hash", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create hash index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Put(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store graph %s", doc.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load graph %s", id)
	}
	normalizeGraph(doc.Graph)
	return &doc, nil
}

func (s *MongoStore) FindByHash(ctx context.Context, hash string) (*Document, error) {
	var doc Document
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.coll.FindOne(ctx, bson.M{"hash": hash}, opts).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find graph by hash")
	}
	normalizeGraph(doc.Graph)
	return &doc, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete graph %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

// =============================================================================
// BSON normalization
// =============================================================================

// normalizeGraph converts driver-specific attribute values back to the
// types the JSON decoder produces: nested documents become maps, arrays
// become []any and 32-bit integers widen to int64.
func normalizeGraph(g *graph.Graph) {
	if g == nil {
		return
	}
	for i := range g.Nodes {
		normalizeAttrs(g.Nodes[i].Attrs)
	}
	for i := range g.Links {
		normalizeAttrs(g.Links[i].Attrs)
	}
}

func normalizeAttrs(attrs map[string]any) {
	for k, v := range attrs {
		attrs[k] = normalizeBSON(v)
	}
}

func normalizeBSON(v any) any {
	switch v := v.(type) {
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case primitive.D:
		m := make(map[string]any, len(v))
		for _, e := range v {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = normalizeBSON(e)
		}
		return m
	case map[string]any:
		normalizeAttrs(v)
		return v
	case primitive.A:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeBSON(e)
		}
		return out
	case []any:
		for i, e := range v {
			v[i] = normalizeBSON(e)
		}
		return v
	}
	return v
}
