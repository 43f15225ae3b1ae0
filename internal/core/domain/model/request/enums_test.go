package request_test

import (
	"testing"

	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	testCases := map[string]request.Priority{
		"":         request.PriorityStandard,
		"standard": request.PriorityStandard,
		"same_day": request.PrioritySameDay,
		"EXPRESS":  request.PriorityExpress,
	}
	for raw, expected := range testCases {
		got, err := request.ParsePriority(raw)

		require.NoError(t, err, raw)
		assert.Equal(t, expected, got)
	}

	_, err := request.ParsePriority("asap")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestPriority_IsRushed(t *testing.T) {
	assert.False(t, request.PriorityStandard.IsRushed())
	assert.True(t, request.PrioritySameDay.IsRushed())
	assert.True(t, request.PriorityExpress.IsRushed())
}

func TestParseAccessDifficulty(t *testing.T) {
	got, err := request.ParseAccessDifficulty("very_difficult")
	require.NoError(t, err)
	assert.Equal(t, request.AccessVeryDifficult, got)

	got, err = request.ParseAccessDifficulty(" ")
	require.NoError(t, err)
	assert.Equal(t, request.AccessUnspecified, got)
	assert.Equal(t, "unspecified", got.String())

	_, err = request.ParseAccessDifficulty("impossible")
	require.Error(t, err)
}

func TestParseTypeAndKind(t *testing.T) {
	typ, err := request.ParseType("instant_eligible")
	require.NoError(t, err)
	assert.Equal(t, request.TypeInstantEligible, typ)

	kind, err := request.ParseKind("waste_pickup")
	require.NoError(t, err)
	assert.Equal(t, request.KindWastePickup, kind)
	assert.Equal(t, "waste_pickup", kind.String())

	_, err = request.ParseKind("storage")
	require.Error(t, err)
}

func TestEnums_String(t *testing.T) {
	assert.Equal(t, "unknown", request.Priority(99).String())
	assert.Equal(t, "same_day", request.PrioritySameDay.String())
	assert.Equal(t, "other", request.TypeOther.String())
	assert.Equal(t, "service_request", request.KindServiceRequest.String())
}

func TestEnums_Validate(t *testing.T) {
	require.NoError(t, request.AccessUnspecified.Validate())
	require.Error(t, request.PriorityUnknown.Validate())
	require.Error(t, request.TypeUnknown.Validate())
	require.Error(t, request.KindUnknown.Validate())

	err := request.Kind(7).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7 is not a valid request kind")
}
