package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per handler call.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork groups job and offer writes into one transaction. Repositories
// taken from a unit of work that was never begun run each call on its own,
// which read-only handlers and the expiry scan rely on.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when Begin was not called.
	Commit(ctx context.Context) error

	// Rollback after Commit changes nothing and returns an error, so handlers
	// defer it and ignore the result.
	Rollback(ctx context.Context) error

	JobRepository() JobRepository
	OfferRepository() OfferRepository
}
