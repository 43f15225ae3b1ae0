package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand records a provider accepting a pending offer.
type AcceptOfferCommand struct {
	offerID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewAcceptOfferCommand(offerID kernel.UUID) (AcceptOfferCommand, error) {
	if err := offerID.Validate(); err != nil {
		return AcceptOfferCommand{}, err
	}
	return AcceptOfferCommand{offerID: offerID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

func (c AcceptOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}
