package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOfferCommandIsNotConstructed = errors.New(
	"RejectOfferCommand must be created via NewRejectOfferCommand constructor",
)

// RejectOfferCommand records a provider declining a pending offer. The reason is
// optional free text.
type RejectOfferCommand struct {
	offerID kernel.UUID
	reason  string
	guard   guard.ConstructorGuard
}

func NewRejectOfferCommand(offerID kernel.UUID, reason string) (RejectOfferCommand, error) {
	if err := offerID.Validate(); err != nil {
		return RejectOfferCommand{}, err
	}
	return RejectOfferCommand{
		offerID: offerID,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RejectOfferCommand) Validate() error {
	return c.guard.Validate(ErrRejectOfferCommandIsNotConstructed)
}

func (c RejectOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

func (c RejectOfferCommand) Reason() string {
	return c.reason
}
