package offer

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an offer.
//
//	Pending ──┬──> Accepted
//	          ├──> Rejected
//	          └──> Expired
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota

	// Pending is the initial status. The provider has not responded yet.
	Pending

	// Accepted means the provider took the job at the offered price.
	Accepted

	// Rejected means the provider declined.
	Rejected

	// Expired means the deadline elapsed, the offer was superseded, or the job was
	// assigned to another provider.
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "Unknown",
		Pending:  "Pending",
		Accepted: "Accepted",
		Rejected: "Rejected",
		Expired:  "Expired",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:  "Pending",
		Accepted: "Accepted",
		Rejected: "Rejected",
		Expired:  "Expired",
	}
}

// Validate checks that s is one of the four lifecycle states.
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

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Accepted || s == Rejected || s == Expired
}

// Accept transitions Pending to Accepted.
func (s Status) Accept() (Status, error) {
	return s.leavePending(Accepted)
}

// Reject transitions Pending to Rejected.
func (s Status) Reject() (Status, error) {
	return s.leavePending(Rejected)
}

// Expire transitions Pending to Expired.
func (s Status) Expire() (Status, error) {
	return s.leavePending(Expired)
}

func (s Status) leavePending(to Status) (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidTransitionError("offer", s.String(), to.String())
	}
	return to, nil
}
