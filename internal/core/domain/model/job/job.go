package job

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrJobIsNotConstructed is returned when a Job was not built by NewJob or RestoreJob.
var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")

// Job is a priced request that providers can be offered.
//
// Invariants:
//   - decision and quote are immutable once the job exists
//   - a provider and an agreed price are present exactly when the job is Assigned
//     or Completed
type Job struct {
	id          kernel.UUID
	kind        request.Kind
	decision    dispatch.Decision
	quote       pricing.Breakdown
	status      Status
	providerID  *kernel.UUID
	agreedPrice *decimal.Decimal
	createdAt   time.Time
	version     int
	guard       guard.ConstructorGuard
}

// NewJob creates an Open job from a decision and its price breakdown.
//
// Example:
//
//	j, err := job.NewJob(kernel.NewUUID(), snapshot.Kind(), decision, breakdown, now)
func NewJob(
	id kernel.UUID,
	kind request.Kind,
	decision dispatch.Decision,
	quote pricing.Breakdown,
	createdAt time.Time,
) (*Job, error) {
	j := &Job{
		status: Open,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		j.setID(id),
		j.setKind(kind),
		j.setDecision(decision),
		j.setQuote(quote),
		j.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return j, nil
}

// RestoreJob rebuilds a job loaded from storage.
func RestoreJob(
	id kernel.UUID,
	kind request.Kind,
	decision dispatch.Decision,
	quote pricing.Breakdown,
	status Status,
	providerID *kernel.UUID,
	agreedPrice *decimal.Decimal,
	createdAt time.Time,
	version int,
) (*Job, error) {
	j := &Job{
		guard:   guard.NewConstructorGuard(),
		version: version,
	}

	if err := errors.Join(
		j.setID(id),
		j.setKind(kind),
		j.setDecision(decision),
		j.setQuote(quote),
		j.setCreatedAt(createdAt),
		j.setAssignment(status, providerID, agreedPrice),
	); err != nil {
		return nil, err
	}

	return j, nil
}

func (j *Job) Validate() error {
	if j == nil {
		return ErrJobIsNotConstructed
	}
	return j.guard.Validate(ErrJobIsNotConstructed)
}

// IsEqual compares jobs by identifier.
func (j *Job) IsEqual(other *Job) bool {
	return other != nil && j.id.IsEqual(other.id)
}

func (j *Job) ID() kernel.UUID {
	return j.id
}

func (j *Job) Kind() request.Kind {
	return j.kind
}

func (j *Job) Decision() dispatch.Decision {
	return j.decision
}

// Quote returns the price breakdown computed when the job was created.
func (j *Job) Quote() pricing.Breakdown {
	return j.quote
}

func (j *Job) Status() Status {
	return j.status
}

// Provider returns the assigned provider, or nil.
func (j *Job) Provider() *kernel.UUID {
	if j.providerID == nil {
		return nil
	}
	id := *j.providerID
	return &id
}

// AgreedPrice returns the payout fixed at assignment.
func (j *Job) AgreedPrice() (decimal.Decimal, bool) {
	if j.agreedPrice == nil {
		return decimal.Zero, false
	}
	return *j.agreedPrice, true
}

func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// Version is the storage version the job was loaded with.
func (j *Job) Version() int {
	return j.version
}

// MarkOffered records that at least one pending offer exists.
func (j *Job) MarkOffered() error {
	next, err := j.status.Offer()
	if err != nil {
		return err
	}
	j.status = next
	return nil
}

// Reopen returns an Offered job to Open once no pending offers remain.
func (j *Job) Reopen() error {
	next, err := j.status.Reopen()
	if err != nil {
		return err
	}
	j.status = next
	return nil
}

// Assign fixes the provider and the price agreed through an accepted offer.
func (j *Job) Assign(providerID kernel.UUID, price decimal.Decimal) error {
	if err := providerID.Validate(); err != nil {
		return err
	}
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("agreed price", fmt.Errorf("%s is not greater than 0", price))
	}

	next, err := j.status.Assign()
	if err != nil {
		return err
	}

	j.status = next
	j.providerID = &providerID
	j.agreedPrice = &price
	return nil
}

// Complete marks the work as done.
func (j *Job) Complete() error {
	next, err := j.status.Complete()
	if err != nil {
		return err
	}
	j.status = next
	return nil
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	j.id = id
	return nil
}

func (j *Job) setKind(kind request.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	j.kind = kind
	return nil
}

func (j *Job) setDecision(d dispatch.Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}
	j.decision = d
	return nil
}

func (j *Job) setQuote(q pricing.Breakdown) error {
	if err := q.Validate(); err != nil {
		return err
	}
	j.quote = q
	return nil
}

func (j *Job) setCreatedAt(t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	j.createdAt = t
	return nil
}

func (j *Job) setAssignment(status Status, providerID *kernel.UUID, price *decimal.Decimal) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := status.ValidateCanHaveProvider(providerID != nil); err != nil {
		return err
	}
	if (providerID == nil) != (price == nil) {
		return errs.NewValueIsInvalidErrorWithCause("agreed price",
			errors.New("provider and agreed price must be set together"))
	}
	j.status = status
	if providerID != nil {
		id := *providerID
		p := *price
		j.providerID = &id
		j.agreedPrice = &p
	}
	return nil
}
