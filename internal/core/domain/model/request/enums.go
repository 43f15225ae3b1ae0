package request

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Priority is the customer-requested urgency of a request.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityStandard
	PrioritySameDay
	PriorityExpress
)

// AccessDifficulty describes how hard a pickup or dropoff address is to work at.
// AccessUnspecified means the address was not assessed.
type AccessDifficulty int

const (
	AccessUnspecified AccessDifficulty = iota
	AccessNormal
	AccessDifficult
	AccessVeryDifficult
)

// Type tells whether a request may be resolved by instant dispatch at all.
type Type int

const (
	TypeUnknown Type = iota
	TypeInstantEligible
	TypeOther
)

// Kind names the subsystem a request belongs to. Every kind shares the same offer
// lifecycle.
type Kind int

const (
	KindUnknown Kind = iota
	KindMove
	KindServiceRequest
	KindWastePickup
)

var (
	priorityNames = map[Priority]string{
		PriorityStandard: "standard",
		PrioritySameDay:  "same_day",
		PriorityExpress:  "express",
	}
	accessNames = map[AccessDifficulty]string{
		AccessNormal:        "normal",
		AccessDifficult:     "difficult",
		AccessVeryDifficult: "very_difficult",
	}
	typeNames = map[Type]string{
		TypeInstantEligible: "instant_eligible",
		TypeOther:           "other",
	}
	kindNames = map[Kind]string{
		KindMove:           "move",
		KindServiceRequest: "service_request",
		KindWastePickup:    "waste_pickup",
	}
)

func (p Priority) String() string {
	return nameOf(priorityNames, p)
}

// IsRushed reports whether the priority is same_day or express.
func (p Priority) IsRushed() bool {
	return p == PrioritySameDay || p == PriorityExpress
}

func (p Priority) Validate() error {
	return validate(priorityNames, p, "priority")
}

// ParsePriority accepts the lower-case wire names. An empty string is standard.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityStandard, nil
	}
	return parse(priorityNames, s, "priority")
}

func (a AccessDifficulty) String() string {
	if a == AccessUnspecified {
		return "unspecified"
	}
	return nameOf(accessNames, a)
}

func (a AccessDifficulty) Validate() error {
	if a == AccessUnspecified {
		return nil
	}
	return validate(accessNames, a, "access difficulty")
}

// ParseAccessDifficulty accepts the lower-case wire names. An empty string is unspecified.
func ParseAccessDifficulty(s string) (AccessDifficulty, error) {
	if strings.TrimSpace(s) == "" {
		return AccessUnspecified, nil
	}
	return parse(accessNames, s, "access difficulty")
}

func (t Type) String() string {
	return nameOf(typeNames, t)
}

func (t Type) Validate() error {
	return validate(typeNames, t, "request type")
}

// ParseType accepts the lower-case wire names. An empty string is other.
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return TypeOther, nil
	}
	return parse(typeNames, s, "request type")
}

func (k Kind) String() string {
	return nameOf(kindNames, k)
}

func (k Kind) Validate() error {
	return validate(kindNames, k, "request kind")
}

// ParseKind accepts the lower-case wire names. An empty string is move.
func ParseKind(s string) (Kind, error) {
	if strings.TrimSpace(s) == "" {
		return KindMove, nil
	}
	return parse(kindNames, s, "request kind")
}

func nameOf[T ~int](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return "unknown"
}

func validate[T ~int](names map[T]string, v T, param string) error {
	if _, ok := names[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%d is not a valid %s", v, param))
	}
	return nil
}

func parse[T ~int](names map[T]string, s, param string) (T, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for v, name := range names {
		if name == needle {
			return v, nil
		}
	}
	var zero T
	return zero, errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%q is not a valid %s", s, param))
}
