// Package memledger keeps the ledger world state in memory. It backs the custody
// contract in tests and in single-process development setups.
package memledger

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"custody/internal/adapters/out/ledger/contract"

	"github.com/google/uuid"
)

// RecordedEvent is an event as committed, with the transaction that emitted it.
type RecordedEvent struct {
	TxID string
	contract.Event
}

type entry struct {
	versions []contract.Version
}

// Store is an in-memory contract.Store.
type Store struct {
	mu     sync.RWMutex
	keys   map[string]*entry
	events []RecordedEvent
	now    func() time.Time
}

var _ contract.Store = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		keys: make(map[string]*entry),
		now:  time.Now,
	}
}

func (s *Store) Get(ctx context.Context, key string) (contract.Versioned, error) {
	if err := ctx.Err(); err != nil {
		return contract.Versioned{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.keys[key]
	if !ok {
		return contract.Versioned{}, contract.ErrNotFound
	}
	latest := e.versions[len(e.versions)-1]
	return contract.Versioned{Value: slices.Clone(latest.Value), Version: int64(len(e.versions))}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, expectedVersion int64, events []contract.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	var current int64
	if ok {
		current = int64(len(e.versions))
	}
	if current != expectedVersion {
		return contract.ErrVersionConflict
	}
	if !ok {
		e = &entry{}
		s.keys[key] = e
	}

	txID := uuid.NewString()
	e.versions = append(e.versions, contract.Version{
		TxID:        txID,
		Value:       slices.Clone(value),
		CommittedAt: s.now().UTC(),
	})
	for _, ev := range events {
		s.events = append(s.events, RecordedEvent{TxID: txID, Event: ev})
	}
	return nil
}

func (s *Store) History(ctx context.Context, key string) ([]contract.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.keys[key]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return slices.Clone(e.versions), nil
}

func (s *Store) List(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(s.keys))
	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		versions := s.keys[k].versions
		values = append(values, slices.Clone(versions[len(versions)-1].Value))
	}
	return values, nil
}

// Events returns every committed event in commit order.
func (s *Store) Events() []RecordedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
