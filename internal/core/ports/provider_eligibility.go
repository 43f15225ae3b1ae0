package ports

import (
	"context"

	"dispatch/internal/core/domain/model/request"
)

// ProviderEligibilityOracle tells whether qualified providers exist for a request.
// The dispatch core treats the answer as an opaque boolean.
type ProviderEligibilityOracle interface {
	AreQualifiedProvidersAvailable(ctx context.Context, snapshot request.Snapshot) (bool, error)
}
