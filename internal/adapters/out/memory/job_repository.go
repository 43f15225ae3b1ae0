package memory

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type JobRepository struct {
	uow *UnitOfWork
}

func (r *JobRepository) Add(_ context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	stored, err := copyJob(aggregate, aggregate.Version())
	if err != nil {
		return err
	}

	return r.uow.with(func(s *state) error {
		if _, exists := s.jobs[aggregate.ID()]; exists {
			return errs.NewValueIsInvalidErrorWithCause("job", fmt.Errorf("%s already exists", aggregate.ID()))
		}
		s.jobs[aggregate.ID()] = stored
		return nil
	})
}

func (r *JobRepository) Update(_ context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	stored, err := copyJob(aggregate, aggregate.Version()+1)
	if err != nil {
		return err
	}

	return r.uow.with(func(s *state) error {
		current, ok := s.jobs[aggregate.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("job", aggregate.ID().String())
		}
		if current.Version() != aggregate.Version() {
			return errs.NewVersionIsInvalidErrorWithCause("job",
				fmt.Errorf("%s was modified after version %d", aggregate.ID(), aggregate.Version()))
		}
		s.jobs[aggregate.ID()] = stored
		return nil
	})
}

func (r *JobRepository) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var found *job.Job
	err := r.uow.with(func(s *state) error {
		current, ok := s.jobs[id]
		if !ok {
			return errs.NewObjectNotFoundError("job", id.String())
		}
		var copyErr error
		found, copyErr = copyJob(current, current.Version())
		return copyErr
	})
	return found, err
}

func copyJob(j *job.Job, version int) (*job.Job, error) {
	var agreedPrice *decimal.Decimal
	if price, ok := j.AgreedPrice(); ok {
		agreedPrice = &price
	}
	return job.RestoreJob(j.ID(), j.Kind(), j.Decision(), j.Quote(), j.Status(), j.Provider(), agreedPrice,
		j.CreatedAt(), version)
}
