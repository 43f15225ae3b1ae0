package job

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a job.
//
//	Open ──> Offered ──> Assigned ──> Completed
//	  ^         │
//	  └─────────┘
//	(no pending offers left)
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota

	// Open jobs are priced and waiting to be offered.
	Open

	// Offered jobs have at least one pending offer.
	Offered

	// Assigned jobs have a provider and an agreed price.
	Assigned

	// Completed is final.
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Open:      "Open",
		Offered:   "Offered",
		Assigned:  "Assigned",
		Completed: "Completed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Open:      "Open",
		Offered:   "Offered",
		Assigned:  "Assigned",
		Completed: "Completed",
	}
}

func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ValidateOffer checks that a new offer may be made without performing the transition.
func (s Status) ValidateOffer() error {
	if s != Open && s != Offered {
		return errs.NewInvalidTransitionError("job", s.String(), Offered.String())
	}
	return nil
}

// Offer transitions Open or Offered to Offered.
func (s Status) Offer() (Status, error) {
	if err := s.ValidateOffer(); err != nil {
		return 0, err
	}
	return Offered, nil
}

// ValidateAssign checks that the job can be assigned.
func (s Status) ValidateAssign() error {
	if s != Open && s != Offered {
		return errs.NewInvalidTransitionError("job", s.String(), Assigned.String())
	}
	return nil
}

// Assign transitions Open or Offered to Assigned.
func (s Status) Assign() (Status, error) {
	if err := s.ValidateAssign(); err != nil {
		return 0, err
	}
	return Assigned, nil
}

// Reopen transitions Offered back to Open. Open stays Open.
func (s Status) Reopen() (Status, error) {
	if s != Offered && s != Open {
		return 0, errs.NewInvalidTransitionError("job", s.String(), Open.String())
	}
	return Open, nil
}

// Complete transitions Assigned to Completed.
func (s Status) Complete() (Status, error) {
	if s != Assigned {
		return 0, errs.NewInvalidTransitionError("job", s.String(), Completed.String())
	}
	return Completed, nil
}

// ValidateCanHaveProvider checks consistency between status and provider assignment.
func (s Status) ValidateCanHaveProvider(hasProvider bool) error {
	if hasProvider && s != Assigned && s != Completed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a provider", s),
		)
	}
	if !hasProvider && (s == Assigned || s == Completed) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no provider", s),
		)
	}
	return nil
}
