package services

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrOfferDoesNotBelongToJob is returned when an offer and a job do not match.
var ErrOfferDoesNotBelongToJob = errors.New("offer does not belong to job")

// OfferLifecycle applies offer transitions together with their effect on the job.
// It mutates only the aggregates passed in and leaves them untouched when a call
// fails.
//
// Example:
//
//	lifecycle := services.NewOfferLifecycle()
//	created, superseded, err := lifecycle.OfferToProvider(j, pending, providerID, price, nil, now)
//	// persist created, superseded and j in one unit of work
type OfferLifecycle struct {
	ttl        time.Duration
	instantTTL time.Duration
}

// NewOfferLifecycle returns a lifecycle whose default acceptance window is
// offer.DefaultTTL and whose instant window is offer.DefaultInstantTTL.
func NewOfferLifecycle() OfferLifecycle {
	return OfferLifecycle{ttl: offer.DefaultTTL, instantTTL: offer.DefaultInstantTTL}
}

// NewOfferLifecycleWithWindows overrides the default and the instant acceptance
// windows.
func NewOfferLifecycleWithWindows(ttl, instantTTL time.Duration) (OfferLifecycle, error) {
	var ttlErr, instantErr error
	if ttl <= 0 {
		ttlErr = errs.NewValueIsInvalidErrorWithCause("offer ttl", fmt.Errorf("%s is not positive", ttl))
	}
	if instantTTL <= 0 {
		instantErr = errs.NewValueIsInvalidErrorWithCause("instant offer ttl", fmt.Errorf("%s is not positive", instantTTL))
	}
	if err := errors.Join(ttlErr, instantErr); err != nil {
		return OfferLifecycle{}, err
	}
	return OfferLifecycle{ttl: ttl, instantTTL: instantTTL}, nil
}

// DeadlineFor is the deadline of an offer of j made at now when the caller
// names none: the instant window for instantly dispatched jobs, the decision's
// assignment window otherwise. Jobs without a usable decision get the default
// window.
func (l OfferLifecycle) DeadlineFor(j *job.Job, now time.Time) time.Time {
	if j.Validate() != nil || j.Decision().Validate() != nil {
		return now.Add(l.ttl)
	}
	d := j.Decision()
	if d.IsInstant() {
		return now.Add(l.instantTTL)
	}
	if hours, ok := d.AssignmentWindowHours(); ok && hours > 0 {
		return now.Add(time.Duration(hours) * time.Hour)
	}
	return now.Add(l.ttl)
}

// OfferToProvider creates a Pending offer of j to providerID. pending holds the
// offers of the same (job, provider) pair that are still Pending; each of them is
// expired with reason "superseded" and returned. expiresAt defaults to now plus
// the lifecycle's default window and must be after now. A price below the job's
// minimum bid is out of range. The job moves to Offered.
func (l OfferLifecycle) OfferToProvider(
	j *job.Job,
	pending []*offer.Offer,
	providerID kernel.UUID,
	price decimal.Decimal,
	expiresAt *time.Time,
	now time.Time,
) (*offer.Offer, []*offer.Offer, error) {
	if err := j.Validate(); err != nil {
		return nil, nil, err
	}
	if err := j.Status().ValidateOffer(); err != nil {
		return nil, nil, err
	}

	if bid, ok := j.Decision().MinimumBid(); ok && price.LessThan(bid) {
		return nil, nil, errs.NewValueIsOutOfRangeError("offered price", price.String(), bid.String(), "unbounded")
	}

	deadline := now.Add(l.ttl)
	if expiresAt != nil {
		deadline = *expiresAt
	}

	created, err := offer.NewOffer(kernel.NewUUID(), j.Kind(), j.ID(), providerID, price, now, deadline)
	if err != nil {
		return nil, nil, err
	}

	for _, o := range pending {
		if err = l.checkPair(o, j, providerID); err != nil {
			return nil, nil, err
		}
		if o.Status() != offer.Pending {
			return nil, nil, errs.NewInvalidTransitionError("offer", o.Status().String(), offer.Expired.String())
		}
	}

	superseded := make([]*offer.Offer, 0, len(pending))
	for _, o := range pending {
		// Status was checked above, Expire cannot fail here.
		_ = o.Expire(now, offer.ReasonSuperseded)
		superseded = append(superseded, o)
	}

	if err = j.MarkOffered(); err != nil {
		return nil, nil, err
	}

	return created, superseded, nil
}

// Accept resolves o as accepted, assigns j to the offer's provider at the offered
// price and expires every other Pending offer in siblings with reason
// "job assigned to another provider". The closed siblings are returned.
func (l OfferLifecycle) Accept(o *offer.Offer, j *job.Job, siblings []*offer.Offer, now time.Time) ([]*offer.Offer, error) {
	if err := errors.Join(o.Validate(), j.Validate()); err != nil {
		return nil, err
	}
	if !o.JobID().IsEqual(j.ID()) {
		return nil, ErrOfferDoesNotBelongToJob
	}
	if err := j.Status().ValidateAssign(); err != nil {
		return nil, err
	}

	if err := o.Accept(now); err != nil {
		return nil, err
	}
	if err := j.Assign(o.ProviderID(), o.OfferedPrice()); err != nil {
		return nil, err
	}

	closed := make([]*offer.Offer, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID().IsEqual(o.ID()) || sibling.Status() != offer.Pending {
			continue
		}
		_ = sibling.Expire(now, offer.ReasonAssignedElsewhere)
		closed = append(closed, sibling)
	}

	return closed, nil
}

// Reject resolves o as rejected with reason. otherPending is the number of
// Pending offers of the same job besides o; when it is zero an Offered job goes
// back to Open so another provider can be tried.
func (l OfferLifecycle) Reject(o *offer.Offer, j *job.Job, otherPending int, reason string, now time.Time) error {
	if err := errors.Join(o.Validate(), j.Validate()); err != nil {
		return err
	}
	if !o.JobID().IsEqual(j.ID()) {
		return ErrOfferDoesNotBelongToJob
	}

	if err := o.Reject(now, reason); err != nil {
		return err
	}

	return l.release(j, otherPending)
}

// Expire closes o with reason "deadline elapsed" when it is Pending and its
// deadline has passed. It reports whether the offer changed.
func (l OfferLifecycle) Expire(o *offer.Offer, now time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if o.Status() != offer.Pending || !o.IsElapsed(now) {
		return false, nil
	}
	if err := o.Expire(now, offer.ReasonDeadlineElapsed); err != nil {
		return false, err
	}
	return true, nil
}

// Release reopens j when no Pending offers remain for it.
func (l OfferLifecycle) Release(j *job.Job, remainingPending int) error {
	if err := j.Validate(); err != nil {
		return err
	}
	return l.release(j, remainingPending)
}

func (l OfferLifecycle) release(j *job.Job, remainingPending int) error {
	if remainingPending > 0 || j.Status() != job.Offered {
		return nil
	}
	return j.Reopen()
}

func (l OfferLifecycle) checkPair(o *offer.Offer, j *job.Job, providerID kernel.UUID) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !o.JobID().IsEqual(j.ID()) || !o.ProviderID().IsEqual(providerID) {
		return fmt.Errorf("%w: offer %s is not for job %s and provider %s",
			ErrOfferDoesNotBelongToJob, o.ID(), j.ID(), providerID)
	}
	return nil
}
