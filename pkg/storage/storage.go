// Package storage persists rendered diagrams so the API can hand out a
// stable id and serve the result again later.
//
// Two backends implement [Store]: [MongoStore] for the server
// (go.mongodb.org/mongo-driver) and [MemoryStore] for tests and for running
// `lifeline serve` without a database.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// Record is one stored diagram.
type Record struct {
	ID           string        `json:"id" bson:"_id"`
	DocumentHash string        `json:"document_hash" bson:"document_hash"`
	Title        string        `json:"title,omitempty" bson:"title,omitempty"`
	Layout       layout.Layout `json:"layout" bson:"layout"`
	SVG          string        `json:"svg,omitempty" bson:"svg,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
}

// NewRecord returns a record with a fresh random id.
func NewRecord(docHash string, l layout.Layout, svg []byte) *Record {
	return &Record{
		ID:           uuid.NewString(),
		DocumentHash: docHash,
		Title:        l.Extent.Title,
		Layout:       l,
		SVG:          string(svg),
		CreatedAt:    time.Now().UTC(),
	}
}

// Store saves and loads records.
type Store interface {
	// Save inserts or replaces the record with r.ID. An empty ID is filled
	// in and a zero CreatedAt is set to now.
	Save(ctx context.Context, r *Record) error

	// Get returns the record with id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// FindByHash returns the newest record for a document hash, or a
	// NOT_FOUND error.
	FindByHash(ctx context.Context, docHash string) (*Record, error)

	// Delete removes the record with id, or returns a NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend.
	Close(ctx context.Context) error
}

// ValidateID rejects ids that are not UUIDs before they reach a backend.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid diagram id %q", id)
	}
	return nil
}

func prepare(r *Record) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
}
