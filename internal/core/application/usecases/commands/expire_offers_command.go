package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultExpireBatchSize bounds how many elapsed offers one sweep handles.
const DefaultExpireBatchSize = 100

var ErrExpireOffersCommandIsNotConstructed = errors.New(
	"ExpireOffersCommand must be created via NewExpireOffersCommand constructor",
)

// ExpireOffersCommand closes pending offers whose deadline has passed.
type ExpireOffersCommand struct {
	limit int
	guard guard.ConstructorGuard
}

func NewExpireOffersCommand(limit int) (ExpireOffersCommand, error) {
	if limit <= 0 {
		return ExpireOffersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return ExpireOffersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireOffersCommand) Validate() error {
	return c.guard.Validate(ErrExpireOffersCommandIsNotConstructed)
}

func (c ExpireOffersCommand) Limit() int {
	return c.limit
}
