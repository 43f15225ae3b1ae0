package commands

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrOfferJobCommandIsNotConstructed = errors.New(
	"OfferJobCommand must be created via NewOfferJobCommand constructor",
)

// OfferJobCommand offers a job to one provider. A pending offer of the same job
// to the same provider is superseded.
type OfferJobCommand struct {
	jobID      kernel.UUID
	providerID kernel.UUID
	price      *decimal.Decimal
	expiresAt  *time.Time

	guard guard.ConstructorGuard
}

// NewOfferJobCommand builds the command. A nil price offers the job price of the
// stored quote; a nil expiresAt uses the default acceptance window.
func NewOfferJobCommand(
	jobID, providerID kernel.UUID,
	price *decimal.Decimal,
	expiresAt *time.Time,
) (OfferJobCommand, error) {
	if err := errors.Join(jobID.Validate(), providerID.Validate()); err != nil {
		return OfferJobCommand{}, err
	}
	if price != nil && !price.IsPositive() {
		return OfferJobCommand{}, errs.NewValueIsInvalidErrorWithCause("offered price",
			fmt.Errorf("%s is not positive", price))
	}

	cmd := OfferJobCommand{
		jobID:      jobID,
		providerID: providerID,
		guard:      guard.NewConstructorGuard(),
	}
	if price != nil {
		p := *price
		cmd.price = &p
	}
	if expiresAt != nil {
		t := *expiresAt
		cmd.expiresAt = &t
	}
	return cmd, nil
}

func (c OfferJobCommand) Validate() error {
	return c.guard.Validate(ErrOfferJobCommandIsNotConstructed)
}

func (c OfferJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c OfferJobCommand) ProviderID() kernel.UUID {
	return c.providerID
}

// Price returns the requested price, if one was given.
func (c OfferJobCommand) Price() (decimal.Decimal, bool) {
	if c.price == nil {
		return decimal.Decimal{}, false
	}
	return *c.price, true
}

func (c OfferJobCommand) ExpiresAt() *time.Time {
	if c.expiresAt == nil {
		return nil
	}
	t := *c.expiresAt
	return &t
}
