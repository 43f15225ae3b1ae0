// Package pricingrepo reads the active pricing configuration with pgx.
package pricingrepo

import (
	"context"
	"encoding/json"
	"errors"

	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

const activeConfigurationSQL = `SELECT distance_rate, weight_rate, platform_fee_pct, markup_pct, minimum_job_price, peak_windows
FROM pricing_configurations
WHERE is_active
ORDER BY created_at DESC, id DESC
LIMIT 1`

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxConfigurationRepository implements ports.PricingConfigurationRepository.
type PgxConfigurationRepository struct {
	db Querier
}

func NewPgxConfigurationRepository(db Querier) *PgxConfigurationRepository {
	return &PgxConfigurationRepository{db: db}
}

type peakWindowDTO struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Active returns the newest active configuration. A NULL peak_windows column
// keeps the default windows and an empty array disables peak pricing.
func (r *PgxConfigurationRepository) Active(ctx context.Context) (pricing.Configuration, error) {
	var (
		distanceRate, weightRate, feePct, markupPct, minimum decimal.Decimal
		rawWindows                                           []byte
	)

	err := r.db.QueryRow(ctx, activeConfigurationSQL).
		Scan(&distanceRate, &weightRate, &feePct, &markupPct, &minimum, &rawWindows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Configuration{}, errs.NewConfigurationMissingError("pricing configuration")
		}
		return pricing.Configuration{}, eris.Wrap(err, "query active pricing configuration")
	}

	windows, err := decodePeakWindows(rawWindows)
	if err != nil {
		return pricing.Configuration{}, err
	}

	cfg, err := pricing.NewConfiguration(pricing.ConfigurationParams{
		DistanceRate:    &distanceRate,
		WeightRate:      &weightRate,
		PlatformFeePct:  &feePct,
		MarkupPct:       &markupPct,
		MinimumJobPrice: &minimum,
		PeakWindows:     windows,
	})
	if err != nil {
		return pricing.Configuration{}, errs.NewConfigurationMissingErrorWithCause("pricing configuration", err)
	}

	return cfg, nil
}

func decodePeakWindows(raw []byte) ([]pricing.PeakWindow, error) {
	if raw == nil {
		return nil, nil
	}

	var dtos []peakWindowDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, errs.NewConfigurationMissingErrorWithCause("pricing configuration", eris.Wrap(err, "decode peak_windows"))
	}

	windows := make([]pricing.PeakWindow, 0, len(dtos))
	for _, w := range dtos {
		windows = append(windows, pricing.PeakWindow{StartHour: w.StartHour, EndHour: w.EndHour})
	}
	return windows, nil
}
