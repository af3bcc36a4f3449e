package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per command or projector write.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a transaction over the order projection. The ledger is never
// part of it: a ledger write and an order write commit independently, and the
// projector sweep reconciles them.
//
// Callers Begin, defer Rollback, and Commit. The deferred Rollback after a
// Commit returns an error that callers discard.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// OrderRepository is bound to the open transaction, or to the plain
	// connection before Begin.
	OrderRepository() OrderRepository
}
