package ports

import (
	"context"

	"dispatch/internal/core/domain/model/pricing"
)

// PricingConfigurationRepository reads the active pricing configuration.
type PricingConfigurationRepository interface {
	// Active returns errs.ConfigurationMissingError when no configuration is
	// active. Callers fall back to pricing.DefaultConfiguration.
	Active(ctx context.Context) (pricing.Configuration, error)
}
