package services_test

import (
	"testing"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/request"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func decPtr(s string) *decimal.Decimal {
	return ptr(decimal.RequireFromString(s))
}

func mustSnapshot(t *testing.T, p request.Params) request.Snapshot {
	t.Helper()

	s, err := request.NewSnapshot(p)
	require.NoError(t, err)
	return s
}

func mustScores(t *testing.T, complexity, demand, route float64) dispatch.ScoreSet {
	t.Helper()

	s, err := dispatch.NewScoreSet(complexity, demand, route)
	require.NoError(t, err)
	return s
}
