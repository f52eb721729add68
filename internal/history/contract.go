// Package history defines the query-history contract (spec.md §1: "the
// SQLite history store" is a thin, replaceable adapter) plus an
// in-memory reference implementation for tests and small deployments.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what operation a Record captures.
type Kind string

const (
	KindTrace       Kind = "trace"
	KindReverse     Kind = "reverse"
	KindSimulate    Kind = "simulate_failure"
	KindBlastRadius Kind = "blast_radius"
)

// Record is one persisted query: its input parameters and result,
// opaque to the store itself.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Kind      Kind            `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListResult is a page of history records.
type ListResult struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	HasMore bool     `json:"has_more"`
}

// Store persists and retrieves query history. Out of scope per spec.md
// §1 beyond this contract — a concrete backing store (SQLite, etc.) is a
// thin adapter.
type Store interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, bool, error)
	List(ctx context.Context, kind Kind, limit, offset int) (ListResult, error)
}
