package contract

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Store when a key has never been written.
	ErrNotFound = errors.New("ledger key not found")

	// ErrVersionConflict is returned by Store.Put when the key moved past the
	// expected version, or already exists when expecting to create it.
	ErrVersionConflict = errors.New("ledger version conflict")
)

// Versioned is the latest committed value of a key.
type Versioned struct {
	Value   []byte
	Version int64
}

// Version is one committed write of a key, in commit order.
type Version struct {
	TxID        string
	Value       []byte
	IsDelete    bool
	CommittedAt time.Time
}

// Event is emitted together with the write that caused it.
type Event struct {
	Name    string
	Payload []byte
}

// Store is the world state behind the engine. Put is a compare-and-set: it commits
// value and events atomically only if the key is still at expectedVersion, with
// expectedVersion 0 meaning the key must not exist yet.
type Store interface {
	Get(ctx context.Context, key string) (Versioned, error)
	Put(ctx context.Context, key string, value []byte, expectedVersion int64, events []Event) error
	History(ctx context.Context, key string) ([]Version, error)
	List(ctx context.Context) ([][]byte, error)
}
