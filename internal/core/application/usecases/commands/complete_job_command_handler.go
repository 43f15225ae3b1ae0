package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"

	"go.uber.org/zap"
)

type CompleteJobCommandHandler struct {
	uowFactory JobUoWFactory
	logger     *zap.Logger
}

func NewCompleteJobCommandHandler(uowFactory JobUoWFactory, logger *zap.Logger) CompleteJobCommandHandler {
	return CompleteJobCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("handler", "complete_job")),
	}
}

func (h CompleteJobCommandHandler) Handle(ctx context.Context, cmd CompleteJobCommand) (*job.Job, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()

	j, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}

	if err = j.Complete(); err != nil {
		return nil, err
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("job completed", zap.Stringer("job_id", j.ID()))

	return j, nil
}
