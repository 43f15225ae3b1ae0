package memory

import (
	"context"
	"errors"

	"dispatch/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoTransaction = errors.New("no active transaction")

// UnitOfWork stages writes on a copy of the store state and publishes them on
// Commit. It must not be shared between goroutines.
type UnitOfWork struct {
	store  *Store
	staged *state
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.staged != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	staged := u.store.state.snapshot()
	u.staged = &staged
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.staged == nil {
		return ErrNoTransaction
	}

	u.store.state = *u.staged
	u.staged = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.staged == nil {
		return ErrNoTransaction
	}

	u.staged = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) JobRepository() ports.JobRepository {
	return &JobRepository{uow: u}
}

func (u *UnitOfWork) OfferRepository() ports.OfferRepository {
	return &OfferRepository{uow: u}
}

// with runs fn against the staged state inside a transaction, or against the
// committed state under the store lock otherwise.
func (u *UnitOfWork) with(fn func(s *state) error) error {
	if u.staged != nil {
		return fn(u.staged)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(&u.store.state)
}
