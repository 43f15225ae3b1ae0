package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create a valid random UUID", func(t *testing.T) {
		id := kernel.NewUUID()

		require.NoError(t, id.Validate())
		assert.False(t, id.IsZero())
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())
	})

	t.Run("should create unique UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		assert.False(t, id1.IsEqual(id2))
	})
}

func TestUUIDFromString(t *testing.T) {
	canonical := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should accept supported formats", func(t *testing.T) {
		for _, raw := range []string{
			canonical,
			"{550e8400-e29b-41d4-a716-446655440000}",
			"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
			"550e8400e29b41d4a716446655440000",
			"550E8400-E29B-41D4-A716-446655440000",
		} {
			id, err := kernel.UUIDFromString(raw)

			require.NoError(t, err, raw)
			assert.Equal(t, canonical, id.String())
		}
	})

	t.Run("should reject malformed input as validation error", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestMustUUIDFromString(t *testing.T) {
	t.Run("should return parsed UUID", func(t *testing.T) {
		id := kernel.MustUUIDFromString("550e8400-e29b-41d4-a716-446655440000")
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	t.Run("should panic on invalid input", func(t *testing.T) {
		assert.Panics(t, func() { kernel.MustUUIDFromString("nope") })
	})
}

func TestUUIDFromGoogle(t *testing.T) {
	t.Run("should round trip through the library type", func(t *testing.T) {
		original := kernel.NewUUID()

		restored, err := kernel.UUIDFromGoogle(original.Google())

		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("should reject uuid.Nil", func(t *testing.T) {
		_, err := kernel.UUIDFromGoogle(uuid.Nil)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	err := zero.Validate()

	require.Error(t, err)
	assert.True(t, zero.IsZero())
	assert.Contains(t, err.Error(), "UUID must be created")
}
