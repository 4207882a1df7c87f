// Package store persists plays and lineups. Documents are opaque JSON blobs
// addressed by kind and key; the Library layers play and lineup records on top.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Kind is a document collection.
type Kind string

const (
	KindPlay   Kind = "plays"
	KindLineup Kind = "lineups"
)

// Kinds lists every collection.
var Kinds = []Kind{KindPlay, KindLineup}

// Change reports that a document was written or removed, possibly by another
// process sharing the same backend.
type Change struct {
	Kind    Kind   `json:"kind"`
	Key     string `json:"key"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Store is a document backend.
type Store interface {
	Put(ctx context.Context, kind Kind, key string, data []byte) error
	Get(ctx context.Context, kind Kind, key string) ([]byte, error)
	Keys(ctx context.Context, kind Kind) ([]string, error)
	Delete(ctx context.Context, kind Kind, key string) error
	// Watch streams changes until ctx is cancelled or the store is closed.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}
