package pricing

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	DefaultDistanceRate    = decimal.RequireFromString("0.50")
	DefaultWeightRate      = decimal.RequireFromString("0.30")
	DefaultPlatformFeePct  = decimal.RequireFromString("0.15")
	DefaultMarkupPct       = decimal.RequireFromString("0.10")
	DefaultMinimumJobPrice = decimal.RequireFromString("25")
	DefaultPeakWindows     = []PeakWindow{{StartHour: 7, EndHour: 10}, {StartHour: 16, EndHour: 19}}
)

// ErrConfigurationIsNotConstructed is returned when a zero-value Configuration is used.
var ErrConfigurationIsNotConstructed = errors.New("Configuration must be created via NewConfiguration or DefaultConfiguration")

// PeakWindow is a half-open range of hours of the day, [StartHour, EndHour).
type PeakWindow struct {
	StartHour int
	EndHour   int
}

// Contains reports whether hour falls inside the window.
func (w PeakWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

func (w PeakWindow) validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return errs.NewValueIsInvalidErrorWithCause("peak window",
			fmt.Errorf("[%d, %d) is not a valid hour range", w.StartHour, w.EndHour))
	}
	return nil
}

// ConfigurationParams holds optional overrides. Nil fields take the defaults.
type ConfigurationParams struct {
	DistanceRate    *decimal.Decimal
	WeightRate      *decimal.Decimal
	PlatformFeePct  *decimal.Decimal
	MarkupPct       *decimal.Decimal
	MinimumJobPrice *decimal.Decimal
	PeakWindows     []PeakWindow
}

// Configuration is the active pricing configuration.
//
// Invariants:
//   - rates, markup and minimum job price are not negative
//   - the platform fee percentage lies in [0, 1)
//   - peak windows are valid hour ranges
type Configuration struct {
	distanceRate    decimal.Decimal
	weightRate      decimal.Decimal
	platformFeePct  decimal.Decimal
	markupPct       decimal.Decimal
	minimumJobPrice decimal.Decimal
	peakWindows     []PeakWindow
	guard           guard.ConstructorGuard
}

// DefaultConfiguration returns the configuration used when none is active.
func DefaultConfiguration() Configuration {
	return Configuration{
		distanceRate:    DefaultDistanceRate,
		weightRate:      DefaultWeightRate,
		platformFeePct:  DefaultPlatformFeePct,
		markupPct:       DefaultMarkupPct,
		minimumJobPrice: DefaultMinimumJobPrice,
		peakWindows:     append([]PeakWindow(nil), DefaultPeakWindows...),
		guard:           guard.NewConstructorGuard(),
	}
}

// NewConfiguration overlays p on the defaults and validates the result.
func NewConfiguration(p ConfigurationParams) (Configuration, error) {
	c := DefaultConfiguration()

	if err := errors.Join(
		c.setRate("distance rate", &c.distanceRate, p.DistanceRate),
		c.setRate("weight rate", &c.weightRate, p.WeightRate),
		c.setRate("markup", &c.markupPct, p.MarkupPct),
		c.setMinimumJobPrice(p.MinimumJobPrice),
		c.setPlatformFee(p.PlatformFeePct),
		c.setPeakWindows(p.PeakWindows),
	); err != nil {
		return Configuration{}, err
	}

	return c, nil
}

func (c Configuration) DistanceRate() decimal.Decimal {
	return c.distanceRate
}

func (c Configuration) WeightRate() decimal.Decimal {
	return c.weightRate
}

// PlatformFeePct is the share of the customer price kept by the platform.
func (c Configuration) PlatformFeePct() decimal.Decimal {
	return c.platformFeePct
}

func (c Configuration) MarkupPct() decimal.Decimal {
	return c.markupPct
}

func (c Configuration) MinimumJobPrice() decimal.Decimal {
	return c.minimumJobPrice
}

// PeakWindows returns a copy of the configured windows.
func (c Configuration) PeakWindows() []PeakWindow {
	return append([]PeakWindow(nil), c.peakWindows...)
}

// IsPeakHour reports whether hour falls in any peak window.
func (c Configuration) IsPeakHour(hour int) bool {
	for _, w := range c.peakWindows {
		if w.Contains(hour) {
			return true
		}
	}
	return false
}

func (c Configuration) Validate() error {
	return c.guard.Validate(ErrConfigurationIsNotConstructed)
}

func (c *Configuration) setRate(name string, dst *decimal.Decimal, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if v.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v))
	}
	*dst = *v
	return nil
}

func (c *Configuration) setMinimumJobPrice(v *decimal.Decimal) error {
	if v != nil && !v.Round(2).Equal(*v) {
		return errs.NewValueIsInvalidErrorWithCause("minimum job price", fmt.Errorf("%s has more than 2 decimal places", v))
	}
	return c.setRate("minimum job price", &c.minimumJobPrice, v)
}

func (c *Configuration) setPlatformFee(v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if v.IsNegative() || v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errs.NewValueIsOutOfRangeError("platform fee", v.String(), "0", "less than 1")
	}
	c.platformFeePct = *v
	return nil
}

func (c *Configuration) setPeakWindows(windows []PeakWindow) error {
	if windows == nil {
		return nil
	}
	for _, w := range windows {
		if err := w.validate(); err != nil {
			return err
		}
	}
	c.peakWindows = append([]PeakWindow(nil), windows...)
	return nil
}
