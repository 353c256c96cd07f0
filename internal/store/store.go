// Package store persists dream journal entries. The default in-memory
// implementation matches the original single-process deployment; the
// DynamoDB implementation survives restarts and concurrent instances.
//
// Entries are write-once: the store exposes no update or delete. Retention
// is a data-lake concern, not the store's.
package store

import (
	"context"

	"github.com/smehra/dreamfilm/internal/model"
)

// DreamStore is the persistence interface for journal entries. Each method
// is safe for concurrent use.
//
// Get returns (nil, nil) when the entry does not exist.
type DreamStore interface {
	// Put stores a new dream entry.
	Put(ctx context.Context, dream *model.Dream) error

	// Get retrieves a dream by ID. Returns nil, nil if not found.
	Get(ctx context.Context, id string) (*model.Dream, error)

	// List returns all dreams, newest first.
	List(ctx context.Context) ([]*model.Dream, error)
}
