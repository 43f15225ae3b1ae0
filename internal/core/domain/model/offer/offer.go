package offer

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTTL is the acceptance window used when the caller gives no deadline.
	DefaultTTL = 24 * time.Hour

	// DefaultInstantTTL is the acceptance window of offers for instantly
	// dispatched jobs.
	DefaultInstantTTL = 15 * time.Minute
)

// Response reasons recorded when an offer expires without a provider response.
const (
	ReasonSuperseded        = "superseded"
	ReasonDeadlineElapsed   = "deadline elapsed"
	ReasonAssignedElsewhere = "job assigned to another provider"
)

// ErrOfferIsNotConstructed is returned when a zero-value Offer is used.
var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

// Offer is one provider's exposure to one job.
//
// Invariants:
//   - ExpiresAt is strictly after OfferedAt
//   - status only moves forward from Pending
//   - RespondedAt is set exactly when the status is terminal
type Offer struct {
	id             kernel.UUID
	subjectKind    request.Kind
	jobID          kernel.UUID
	providerID     kernel.UUID
	offeredPrice   decimal.Decimal
	status         Status
	offeredAt      time.Time
	expiresAt      time.Time
	respondedAt    *time.Time
	responseReason *string
	guard          guard.ConstructorGuard
}

// NewOffer creates a Pending offer.
//
// Example:
//
//	o, err := offer.NewOffer(kernel.NewUUID(), request.KindMove, jobID, providerID,
//	    decimal.RequireFromString("120.00"), now, now.Add(offer.DefaultTTL))
func NewOffer(
	id kernel.UUID,
	subjectKind request.Kind,
	jobID kernel.UUID,
	providerID kernel.UUID,
	offeredPrice decimal.Decimal,
	offeredAt time.Time,
	expiresAt time.Time,
) (*Offer, error) {
	o := &Offer{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIDs(id, jobID, providerID),
		o.setSubjectKind(subjectKind),
		o.setPrice(offeredPrice),
		o.setWindow(offeredAt, expiresAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOffer rebuilds an offer loaded from storage.
func RestoreOffer(
	id kernel.UUID,
	subjectKind request.Kind,
	jobID kernel.UUID,
	providerID kernel.UUID,
	offeredPrice decimal.Decimal,
	status Status,
	offeredAt time.Time,
	expiresAt time.Time,
	respondedAt *time.Time,
	responseReason *string,
) (*Offer, error) {
	o := &Offer{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIDs(id, jobID, providerID),
		o.setSubjectKind(subjectKind),
		o.setPrice(offeredPrice),
		o.setWindow(offeredAt, expiresAt),
		o.setResolution(status, respondedAt, responseReason),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the offer was built by NewOffer or RestoreOffer.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

func (o *Offer) ID() kernel.UUID {
	return o.id
}

// SubjectKind names the subsystem of the offered job.
func (o *Offer) SubjectKind() request.Kind {
	return o.subjectKind
}

func (o *Offer) JobID() kernel.UUID {
	return o.jobID
}

func (o *Offer) ProviderID() kernel.UUID {
	return o.providerID
}

func (o *Offer) OfferedPrice() decimal.Decimal {
	return o.offeredPrice
}

func (o *Offer) Status() Status {
	return o.status
}

func (o *Offer) OfferedAt() time.Time {
	return o.offeredAt
}

func (o *Offer) ExpiresAt() time.Time {
	return o.expiresAt
}

// RespondedAt returns when the offer left Pending. Nil while pending.
func (o *Offer) RespondedAt() *time.Time {
	if o.respondedAt == nil {
		return nil
	}
	t := *o.respondedAt
	return &t
}

// ResponseReason returns the recorded reason, or an empty string.
func (o *Offer) ResponseReason() string {
	if o.responseReason == nil {
		return ""
	}
	return *o.responseReason
}

// IsElapsed reports whether the deadline has passed at now.
func (o *Offer) IsElapsed(now time.Time) bool {
	return !now.Before(o.expiresAt)
}

// IsLive reports whether the offer is Pending and its deadline has not passed.
func (o *Offer) IsLive(now time.Time) bool {
	return o.status == Pending && !o.IsElapsed(now)
}

// Accept records the provider's acceptance. It fails with an invalid transition
// when the offer is not Pending or when now is at or after the deadline, and
// leaves the offer untouched in that case.
func (o *Offer) Accept(now time.Time) error {
	next, err := o.status.Accept()
	if err != nil {
		return err
	}
	if o.IsElapsed(now) {
		return errs.NewInvalidTransitionErrorWithCause("offer", o.status.String(), next.String(),
			fmt.Errorf("deadline %s has elapsed", o.expiresAt.Format(time.RFC3339)))
	}

	o.resolve(next, now, "")
	return nil
}

// Reject records the provider's refusal. Only a live offer can be rejected.
func (o *Offer) Reject(now time.Time, reason string) error {
	next, err := o.status.Reject()
	if err != nil {
		return err
	}
	if o.IsElapsed(now) {
		return errs.NewInvalidTransitionErrorWithCause("offer", o.status.String(), next.String(),
			fmt.Errorf("deadline %s has elapsed", o.expiresAt.Format(time.RFC3339)))
	}

	o.resolve(next, now, reason)
	return nil
}

// Expire closes a Pending offer with the given reason, regardless of its deadline.
func (o *Offer) Expire(now time.Time, reason string) error {
	next, err := o.status.Expire()
	if err != nil {
		return err
	}

	o.resolve(next, now, reason)
	return nil
}

func (o *Offer) resolve(status Status, at time.Time, reason string) {
	o.status = status
	o.respondedAt = &at
	if reason != "" {
		o.responseReason = &reason
	}
}

func (o *Offer) setIDs(id, jobID, providerID kernel.UUID) error {
	if err := errors.Join(id.Validate(), jobID.Validate(), providerID.Validate()); err != nil {
		return err
	}
	o.id = id
	o.jobID = jobID
	o.providerID = providerID
	return nil
}

func (o *Offer) setSubjectKind(kind request.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	o.subjectKind = kind
	return nil
}

func (o *Offer) setPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("offered price", fmt.Errorf("%s is not greater than 0", price))
	}
	o.offeredPrice = price
	return nil
}

func (o *Offer) setWindow(offeredAt, expiresAt time.Time) error {
	if offeredAt.IsZero() {
		return errs.NewValueIsRequiredError("offered at")
	}
	if !expiresAt.After(offeredAt) {
		return errs.NewValueIsInvalidErrorWithCause("expires at",
			fmt.Errorf("%s is not after %s", expiresAt.Format(time.RFC3339), offeredAt.Format(time.RFC3339)))
	}
	o.offeredAt = offeredAt
	o.expiresAt = expiresAt
	return nil
}

func (o *Offer) setResolution(status Status, respondedAt *time.Time, reason *string) error {
	if err := status.Validate(); err != nil {
		return err
	}
	switch {
	case status.IsTerminal() && respondedAt == nil:
		return errs.NewValueIsInvalidErrorWithCause("responded at", fmt.Errorf("%s offer has no response time", status))
	case !status.IsTerminal() && respondedAt != nil:
		return errs.NewValueIsInvalidErrorWithCause("responded at", fmt.Errorf("%s offer has a response time", status))
	}
	o.status = status
	if respondedAt != nil {
		t := *respondedAt
		o.respondedAt = &t
	}
	if reason != nil && *reason != "" {
		r := *reason
		o.responseReason = &r
	}
	return nil
}
