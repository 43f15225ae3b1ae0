// Package memory is an in-process implementation of the persistence ports. A
// unit of work holds the store lock from Begin until Commit or Rollback, so
// transactions are serialized and see each other's effects only after commit.
package memory

import (
	"maps"
	"sync"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// Store holds committed jobs and offers. Stored aggregates are private copies.
type Store struct {
	mu    sync.Mutex
	state state
}

type state struct {
	jobs   map[kernel.UUID]*job.Job
	offers map[kernel.UUID]*offer.Offer
}

func NewStore() *Store {
	return &Store{state: state{
		jobs:   make(map[kernel.UUID]*job.Job),
		offers: make(map[kernel.UUID]*offer.Offer),
	}}
}

// snapshot copies the maps. Values are never mutated in place, so sharing them is safe.
func (s state) snapshot() state {
	return state{
		jobs:   maps.Clone(s.jobs),
		offers: maps.Clone(s.offers),
	}
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}
