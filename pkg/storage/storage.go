// Package storage persists uploaded graphs as documents.
//
// Every successful upload is stored once under a generated ID so sessions,
// the static renderer and later API calls can refer to it without the
// client re-sending the file. Documents are immutable: replacing a graph
// means storing a new document.
//
// Two backends are provided:
//   - [MemoryStore]: process-local, for the CLI, tests and single-instance servers
//   - [MongoStore]: MongoDB collection, for deployments with several API instances
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/linkscope/pkg/graph"
)

// Document is a stored graph together with its upload provenance.
type Document struct {
	ID        string       `json:"id" bson:"_id"`
	Filename  string       `json:"filename" bson:"filename"`
	Format    string       `json:"format" bson:"format"`
	Hash      string       `json:"hash" bson:"hash"`
	Nodes     int          `json:"node_count" bson:"node_count"`
	Edges     int          `json:"edge_count" bson:"edge_count"`
	Graph     *graph.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// NewDocument wraps g in a document with a fresh ID. hash is the content
// hash of the uploaded bytes and is used to find earlier uploads of the
// same file.
func NewDocument(g *graph.Graph, filename, format, hash string) *Document {
	return &Document{
		ID:        NewID(),
		Filename:  filename,
		Format:    format,
		Hash:      hash,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Graph:     g,
		CreatedAt: time.Now().UTC(),
	}
}

// NewID returns a random document ID.
func NewID() string {
	return uuid.NewString()
}

// Store is the interface for graph document backends.
type Store interface {
	// Put stores doc. A document with the same ID is replaced.
	Put(ctx context.Context, doc *Document) error

	// Get returns the document with the given ID, or a GRAPH_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Document, error)

	// FindByHash returns the most recent document with the given content
	// hash, or nil when there is none.
	FindByHash(ctx context.Context, hash string) (*Document, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
