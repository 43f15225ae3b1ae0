// Package commands contains the operations that change dispatch state. Every
// handler validates its command, opens a unit of work, applies domain rules and
// commits.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

type (
	// TxManager handles the transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// JobRepoFactory provides the job repository bound to the transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// OfferRepoFactory provides the offer repository bound to the transaction.
	OfferRepoFactory interface {
		OfferRepository() ports.OfferRepository
	}

	// JobUoW manages transactions for job-only operations.
	JobUoW interface {
		TxManager
		JobRepoFactory
	}

	JobUoWFactory interface {
		Create() JobUoW
	}

	// UoW manages transactions that change jobs and their offers together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   jobs := uow.JobRepository()
	//   offers := uow.OfferRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		JobRepoFactory
		OfferRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
