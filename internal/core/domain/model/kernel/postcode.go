package kernel

import (
	"fmt"
	"strings"
	"unicode"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPostcodeIsNotConstructed is returned when validating a zero-value Postcode.
var ErrPostcodeIsNotConstructed = errs.NewValueIsRequiredError("postcode must be created via NewPostcode")

// Postcode is a normalised postal code: upper case, inner whitespace collapsed to
// a single space. Codes in the "outward inward" form ("SW1A 1AA") are split on the
// space; codes given without a space are split three characters from the end when
// they are long enough to carry an inward part.
//
// Example:
//
//	pc, _ := kernel.NewPostcode("sw1a1aa")
//	pc.String()  // "SW1A 1AA"
//	pc.Outward() // "SW1A"
//	pc.Area()    // "SW"
type Postcode struct {
	value string
	guard guard.ConstructorGuard
}

// NewPostcode normalises raw and validates that it contains only letters, digits
// and spaces, starts with a letter and is between 2 and 10 characters long.
func NewPostcode(raw string) (Postcode, error) {
	value := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if value == "" {
		return Postcode{}, errs.NewValueIsRequiredError("postcode")
	}
	if len(value) < 2 || len(value) > 10 {
		return Postcode{}, errs.NewValueIsOutOfRangeError("postcode length", len(value), 2, 10)
	}
	for i, r := range value {
		switch {
		case i == 0 && !unicode.IsLetter(r):
			return Postcode{}, errs.NewValueIsInvalidErrorWithCause(
				"postcode", fmt.Errorf("%q must start with a letter", value))
		case r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' '):
			return Postcode{}, errs.NewValueIsInvalidErrorWithCause(
				"postcode", fmt.Errorf("%q contains %q", value, r))
		}
	}

	if !strings.Contains(value, " ") && len(value) >= 5 {
		value = value[:len(value)-3] + " " + value[len(value)-3:]
	}

	return Postcode{value: value, guard: guard.NewConstructorGuard()}, nil
}

// String returns the normalised postcode.
func (p Postcode) String() string {
	return p.value
}

// Outward returns the part before the space, or the whole code when there is none.
func (p Postcode) Outward() string {
	outward, _, _ := strings.Cut(p.value, " ")
	return outward
}

// Area returns the leading letters of the outward code (one or two characters).
func (p Postcode) Area() string {
	outward := p.Outward()
	end := 0
	for end < len(outward) && end < 2 && unicode.IsLetter(rune(outward[end])) {
		end++
	}
	return outward[:end]
}

// Region returns the first letter of the postcode.
func (p Postcode) Region() string {
	if p.value == "" {
		return ""
	}
	return p.value[:1]
}

// IsEqual compares normalised values.
func (p Postcode) IsEqual(other Postcode) bool {
	return p.value == other.value
}

// Validate returns ErrPostcodeIsNotConstructed for the zero value.
func (p Postcode) Validate() error {
	return p.guard.Validate(ErrPostcodeIsNotConstructed)
}
