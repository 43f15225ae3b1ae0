package request

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrSnapshotIsNotConstructed is returned when a zero-value Snapshot is used.
var ErrSnapshotIsNotConstructed = errors.New("Snapshot must be created via NewSnapshot constructor")

// Params carries the raw attributes of a request. Nil pointers and empty strings
// mean "not provided". NewSnapshot resolves them into a Snapshot once.
type Params struct {
	Kind                      Kind
	Type                      Type
	RequiresSpecialHandling   bool
	TotalWeightKg             *decimal.Decimal
	StaffRequired             *int
	SpecialInstructionsLength int
	InsuranceRequired         bool
	InsuranceValue            *decimal.Decimal
	ServiceType               string
	StopCount                 int
	Priority                  Priority
	PickupDate                *time.Time
	EstimatedDistanceKm       *decimal.Decimal
	EstimatedDuration         *time.Duration
	PickupAccess              AccessDifficulty
	DropoffAccess             AccessDifficulty
	BasePrice                 decimal.Decimal
	PickupPostcode            string
	DropoffPostcode           string
	PickupLocationKnown       bool
	DropoffLocationKnown      bool
}

// Snapshot is the immutable attribute set the dispatch engine works on.
//
// Invariants:
//   - weight, distance, insurance value and base price are never negative
//   - staff, stop count and instructions length are never negative
//   - pickup date, when present, is a calendar date at midnight UTC
//   - postcodes that do not parse are treated as absent
//   - enumerations hold valid values (zero priority, kind and type are resolved to
//     standard, move and other respectively)
type Snapshot struct {
	kind                      Kind
	requestType               Type
	requiresSpecialHandling   bool
	totalWeightKg             *decimal.Decimal
	staffRequired             *int
	specialInstructionsLength int
	insuranceRequired         bool
	insuranceValue            *decimal.Decimal
	serviceType               string
	stopCount                 int
	priority                  Priority
	pickupDate                *time.Time
	estimatedDistanceKm       *decimal.Decimal
	estimatedDuration         *time.Duration
	pickupAccess              AccessDifficulty
	dropoffAccess             AccessDifficulty
	basePrice                 decimal.Decimal
	pickupPostcode            *kernel.Postcode
	dropoffPostcode           *kernel.Postcode
	pickupLocationKnown       bool
	dropoffLocationKnown      bool
	guard                     guard.ConstructorGuard
}

// NewSnapshot validates p and returns the resolved Snapshot. All validation
// failures are reported together.
//
// Example:
//
//	weight := decimal.NewFromInt(150)
//	snapshot, err := request.NewSnapshot(request.Params{
//	    Type:          request.TypeInstantEligible,
//	    TotalWeightKg: &weight,
//	    BasePrice:     decimal.NewFromInt(100),
//	})
func NewSnapshot(p Params) (Snapshot, error) {
	s := Snapshot{
		requiresSpecialHandling: p.RequiresSpecialHandling,
		insuranceRequired:       p.InsuranceRequired,
		serviceType:             p.ServiceType,
		pickupLocationKnown:     p.PickupLocationKnown,
		dropoffLocationKnown:    p.DropoffLocationKnown,
		guard:                   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setKind(p.Kind),
		s.setType(p.Type),
		s.setPriority(p.Priority),
		s.setWeight(p.TotalWeightKg),
		s.setStaff(p.StaffRequired),
		s.setInstructionsLength(p.SpecialInstructionsLength),
		s.setInsuranceValue(p.InsuranceValue),
		s.setStopCount(p.StopCount),
		s.setPickupDate(p.PickupDate),
		s.setDistance(p.EstimatedDistanceKm),
		s.setDuration(p.EstimatedDuration),
		s.setAccess(p.PickupAccess, p.DropoffAccess),
		s.setBasePrice(p.BasePrice),
	); err != nil {
		return Snapshot{}, err
	}
	s.setPostcodes(p.PickupPostcode, p.DropoffPostcode)

	return s, nil
}

// Validate returns ErrSnapshotIsNotConstructed for the zero value.
func (s Snapshot) Validate() error {
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}

// Kind returns the subsystem the request belongs to.
func (s Snapshot) Kind() Kind {
	return s.kind
}

// Type returns whether the request may be dispatched instantly.
func (s Snapshot) Type() Type {
	return s.requestType
}

func (s Snapshot) RequiresSpecialHandling() bool {
	return s.requiresSpecialHandling
}

func (s Snapshot) SpecialInstructionsLength() int {
	return s.specialInstructionsLength
}

func (s Snapshot) InsuranceRequired() bool {
	return s.insuranceRequired
}

// ServiceType returns the free-text service description, possibly empty.
func (s Snapshot) ServiceType() string {
	return s.serviceType
}

func (s Snapshot) StopCount() int {
	return s.stopCount
}

func (s Snapshot) Priority() Priority {
	return s.priority
}

func (s Snapshot) PickupAccess() AccessDifficulty {
	return s.pickupAccess
}

func (s Snapshot) DropoffAccess() AccessDifficulty {
	return s.dropoffAccess
}

// BasePrice returns the seed payout before adjustments. Zero means unknown.
func (s Snapshot) BasePrice() decimal.Decimal {
	return s.basePrice
}

func (s Snapshot) PickupLocationKnown() bool {
	return s.pickupLocationKnown
}

func (s Snapshot) DropoffLocationKnown() bool {
	return s.dropoffLocationKnown
}

// TotalWeightKg returns the weight and whether it was provided.
func (s Snapshot) TotalWeightKg() (decimal.Decimal, bool) {
	return optional(s.totalWeightKg)
}

// StaffRequired returns the staff count and whether it was provided.
func (s Snapshot) StaffRequired() (int, bool) {
	return optional(s.staffRequired)
}

// InsuranceValue returns the declared value and whether it was provided.
func (s Snapshot) InsuranceValue() (decimal.Decimal, bool) {
	return optional(s.insuranceValue)
}

// PickupDate returns the calendar date (midnight UTC) and whether it was provided.
func (s Snapshot) PickupDate() (time.Time, bool) {
	return optional(s.pickupDate)
}

// EstimatedDistanceKm returns the route distance and whether it was provided.
func (s Snapshot) EstimatedDistanceKm() (decimal.Decimal, bool) {
	return optional(s.estimatedDistanceKm)
}

// EstimatedDuration returns the route duration and whether it was provided.
func (s Snapshot) EstimatedDuration() (time.Duration, bool) {
	return optional(s.estimatedDuration)
}

// PickupPostcode returns the pickup postcode and whether it was provided.
func (s Snapshot) PickupPostcode() (kernel.Postcode, bool) {
	return optional(s.pickupPostcode)
}

// DropoffPostcode returns the dropoff postcode and whether it was provided.
func (s Snapshot) DropoffPostcode() (kernel.Postcode, bool) {
	return optional(s.dropoffPostcode)
}

// HasBasePrice reports whether a seed payout is known.
func (s Snapshot) HasBasePrice() bool {
	return s.basePrice.IsPositive()
}

// DaysUntilPickup counts whole calendar days from the UTC date of now to the
// pickup date. Past pickup dates give negative values. The second result is false
// when no pickup date is known.
func (s Snapshot) DaysUntilPickup(now time.Time) (int, bool) {
	if s.pickupDate == nil {
		return 0, false
	}
	today := dateOf(now)
	return int(s.pickupDate.Sub(today).Hours() / 24), true
}

// IsWeekendPickup reports whether the pickup date falls on Saturday or Sunday.
func (s Snapshot) IsWeekendPickup() bool {
	if s.pickupDate == nil {
		return false
	}
	wd := s.pickupDate.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (s *Snapshot) setKind(k Kind) error {
	if k == KindUnknown {
		k = KindMove
	}
	if err := k.Validate(); err != nil {
		return err
	}
	s.kind = k
	return nil
}

func (s *Snapshot) setType(t Type) error {
	if t == TypeUnknown {
		t = TypeOther
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.requestType = t
	return nil
}

func (s *Snapshot) setPriority(p Priority) error {
	if p == PriorityUnknown {
		p = PriorityStandard
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.priority = p
	return nil
}

func (s *Snapshot) setWeight(w *decimal.Decimal) error {
	if err := nonNegative("total weight", w); err != nil {
		return err
	}
	s.totalWeightKg = cloneDecimal(w)
	return nil
}

func (s *Snapshot) setStaff(staff *int) error {
	if staff == nil {
		return nil
	}
	if *staff < 0 {
		return errs.NewValueIsInvalidErrorWithCause("staff required", fmt.Errorf("%d is negative", *staff))
	}
	v := *staff
	s.staffRequired = &v
	return nil
}

func (s *Snapshot) setInstructionsLength(n int) error {
	if n < 0 {
		return errs.NewValueIsInvalidErrorWithCause("special instructions length", fmt.Errorf("%d is negative", n))
	}
	s.specialInstructionsLength = n
	return nil
}

func (s *Snapshot) setInsuranceValue(v *decimal.Decimal) error {
	if err := nonNegative("insurance value", v); err != nil {
		return err
	}
	s.insuranceValue = cloneDecimal(v)
	return nil
}

func (s *Snapshot) setStopCount(n int) error {
	if n < 0 {
		return errs.NewValueIsInvalidErrorWithCause("stop count", fmt.Errorf("%d is negative", n))
	}
	s.stopCount = n
	return nil
}

func (s *Snapshot) setPickupDate(d *time.Time) error {
	if d == nil {
		return nil
	}
	if d.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("pickup date", errors.New("zero time is not a date"))
	}
	date := dateOf(*d)
	s.pickupDate = &date
	return nil
}

func (s *Snapshot) setDistance(km *decimal.Decimal) error {
	if err := nonNegative("estimated distance", km); err != nil {
		return err
	}
	s.estimatedDistanceKm = cloneDecimal(km)
	return nil
}

func (s *Snapshot) setDuration(d *time.Duration) error {
	if d == nil {
		return nil
	}
	if *d < 0 {
		return errs.NewValueIsInvalidErrorWithCause("estimated duration", fmt.Errorf("%s is negative", *d))
	}
	v := *d
	s.estimatedDuration = &v
	return nil
}

func (s *Snapshot) setAccess(pickup, dropoff AccessDifficulty) error {
	if err := errors.Join(pickup.Validate(), dropoff.Validate()); err != nil {
		return err
	}
	s.pickupAccess = pickup
	s.dropoffAccess = dropoff
	return nil
}

func (s *Snapshot) setBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("base price", fmt.Errorf("%s is negative", price))
	}
	s.basePrice = price
	return nil
}

func (s *Snapshot) setPostcodes(pickup, dropoff string) {
	s.pickupPostcode = parsePostcode(pickup)
	s.dropoffPostcode = parsePostcode(dropoff)
}

// parsePostcode returns nil for codes that are not UK postcodes ("75001"), so
// they score like a missing postcode.
func parsePostcode(raw string) *kernel.Postcode {
	pc, err := kernel.NewPostcode(raw)
	if err != nil {
		return nil
	}
	return &pc
}

func nonNegative(param string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%s is negative", v))
	}
	return nil
}

func cloneDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func optional[T any](v *T) (T, bool) {
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
