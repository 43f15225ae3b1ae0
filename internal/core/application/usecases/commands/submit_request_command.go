package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSubmitRequestCommandIsNotConstructed = errors.New(
	"SubmitRequestCommand must be created via NewSubmitRequestCommand constructor",
)

// SubmitRequestCommand turns a request into a priced job. When the request is
// dispatched instantly and a provider is nominated, the job is offered to that
// provider straight away.
//
// Example:
//
//	cmd, err := NewSubmitRequestCommand(kernel.NewUUID(), snapshot, &providerID, nil)
//	result, err := handler.Handle(ctx, cmd)
type SubmitRequestCommand struct {
	jobID             kernel.UUID
	snapshot          request.Snapshot
	nominatedProvider *kernel.UUID
	offerExpiresAt    *time.Time

	guard guard.ConstructorGuard
}

func NewSubmitRequestCommand(
	jobID kernel.UUID,
	snapshot request.Snapshot,
	nominatedProvider *kernel.UUID,
	offerExpiresAt *time.Time,
) (SubmitRequestCommand, error) {
	cmd := SubmitRequestCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		jobID.Validate(),
		snapshot.Validate(),
		validateOptionalID(nominatedProvider),
	); err != nil {
		return SubmitRequestCommand{}, err
	}
	if offerExpiresAt != nil && nominatedProvider == nil {
		return SubmitRequestCommand{}, errs.NewValueIsRequiredErrorWithCause("nominated provider",
			errors.New("an offer deadline needs a nominated provider"))
	}

	cmd.jobID = jobID
	cmd.snapshot = snapshot
	cmd.nominatedProvider = copyID(nominatedProvider)
	if offerExpiresAt != nil {
		t := *offerExpiresAt
		cmd.offerExpiresAt = &t
	}
	return cmd, nil
}

func (c SubmitRequestCommand) Validate() error {
	return c.guard.Validate(ErrSubmitRequestCommandIsNotConstructed)
}

func (c SubmitRequestCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c SubmitRequestCommand) Snapshot() request.Snapshot {
	return c.snapshot
}

// NominatedProvider is the provider to offer an instant job to, if any.
func (c SubmitRequestCommand) NominatedProvider() *kernel.UUID {
	return copyID(c.nominatedProvider)
}

func (c SubmitRequestCommand) OfferExpiresAt() *time.Time {
	if c.offerExpiresAt == nil {
		return nil
	}
	t := *c.offerExpiresAt
	return &t
}

func validateOptionalID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	return id.Validate()
}

func copyID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
