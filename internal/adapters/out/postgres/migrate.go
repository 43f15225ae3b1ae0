package postgres

import (
	"context"

	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/adapters/out/postgres/offerrepo"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// pricingConfigurationsDDL creates the table read by pricingrepo. It is owned by
// the operators who tune pricing, so it is plain SQL rather than a GORM model.
const pricingConfigurationsDDL = `
CREATE TABLE IF NOT EXISTS pricing_configurations (
	id                 BIGSERIAL PRIMARY KEY,
	distance_rate      NUMERIC(10,4) NOT NULL,
	weight_rate        NUMERIC(10,4) NOT NULL,
	platform_fee_pct   NUMERIC(6,4)  NOT NULL,
	markup_pct         NUMERIC(6,4)  NOT NULL,
	minimum_job_price  NUMERIC(12,2) NOT NULL,
	peak_windows       JSONB,
	is_active          BOOLEAN       NOT NULL DEFAULT FALSE,
	created_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW()
)`

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db *gorm.DB) error {
	conn := db.WithContext(ctx)
	if err := conn.AutoMigrate(&jobrepo.JobDTO{}, &offerrepo.OfferDTO{}); err != nil {
		return eris.Wrap(err, "auto-migrate jobs and offers")
	}
	if err := conn.Exec(pricingConfigurationsDDL).Error; err != nil {
		return eris.Wrap(err, "create pricing_configurations")
	}
	return nil
}
