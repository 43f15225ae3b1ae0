package offer_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var offeredAt = time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)

func newPendingOffer(t *testing.T) *offer.Offer {
	t.Helper()

	o, err := offer.NewOffer(kernel.NewUUID(), request.KindMove, kernel.NewUUID(), kernel.NewUUID(),
		decimal.RequireFromString("120.00"), offeredAt, offeredAt.Add(offer.DefaultTTL))
	require.NoError(t, err)
	return o
}

func TestNewOffer(t *testing.T) {
	t.Run("should create pending offer", func(t *testing.T) {
		o := newPendingOffer(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, offer.Pending, o.Status())
		assert.Equal(t, request.KindMove, o.SubjectKind())
		assert.Equal(t, offeredAt, o.OfferedAt())
		assert.Equal(t, offeredAt.Add(24*time.Hour), o.ExpiresAt())
		assert.Nil(t, o.RespondedAt())
		assert.Empty(t, o.ResponseReason())
	})

	t.Run("should require expires_at after offered_at", func(t *testing.T) {
		_, err := offer.NewOffer(kernel.NewUUID(), request.KindMove, kernel.NewUUID(), kernel.NewUUID(),
			decimal.NewFromInt(10), offeredAt, offeredAt)

		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, err.Error(), "expires at")
	})

	t.Run("should collect every invalid argument", func(t *testing.T) {
		_, err := offer.NewOffer(kernel.UUID{}, request.KindUnknown, kernel.NewUUID(), kernel.UUID{},
			decimal.Zero, offeredAt, offeredAt.Add(time.Hour))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "request kind")
		assert.Contains(t, err.Error(), "offered price")
	})
}

func TestOffer_Accept(t *testing.T) {
	t.Run("should accept before the deadline", func(t *testing.T) {
		o := newPendingOffer(t)
		now := offeredAt.Add(time.Hour)

		require.NoError(t, o.Accept(now))

		assert.Equal(t, offer.Accepted, o.Status())
		require.NotNil(t, o.RespondedAt())
		assert.Equal(t, now, *o.RespondedAt())
	})

	t.Run("should refuse at exactly the deadline without side effects", func(t *testing.T) {
		o := newPendingOffer(t)

		err := o.Accept(o.ExpiresAt())

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "deadline")
		assert.Equal(t, offer.Pending, o.Status())
		assert.Nil(t, o.RespondedAt())
	})

	t.Run("should refuse a second acceptance", func(t *testing.T) {
		o := newPendingOffer(t)
		require.NoError(t, o.Accept(offeredAt.Add(time.Minute)))

		err := o.Accept(offeredAt.Add(2 * time.Minute))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, offeredAt.Add(time.Minute), *o.RespondedAt())
	})

	t.Run("should never accept at or after the deadline under random skew", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(42, 7))

		for range 1000 {
			o := newPendingOffer(t)
			skew := time.Duration(rng.Int64N(int64(96*time.Hour))) - 48*time.Hour
			now := o.ExpiresAt().Add(skew)

			err := o.Accept(now)

			if now.Before(o.ExpiresAt()) {
				require.NoError(t, err, "skew %s", skew)
				assert.Equal(t, offer.Accepted, o.Status())
			} else {
				require.ErrorIs(t, err, errs.ErrInvalidTransition, "skew %s", skew)
				assert.Equal(t, offer.Pending, o.Status())
			}
		}
	})
}

func TestOffer_Reject(t *testing.T) {
	t.Run("should record reason and response time", func(t *testing.T) {
		o := newPendingOffer(t)
		now := offeredAt.Add(30 * time.Minute)

		require.NoError(t, o.Reject(now, "van unavailable"))

		assert.Equal(t, offer.Rejected, o.Status())
		assert.Equal(t, "van unavailable", o.ResponseReason())
		assert.Equal(t, now, *o.RespondedAt())
	})

	t.Run("should refuse an elapsed offer", func(t *testing.T) {
		o := newPendingOffer(t)

		err := o.Reject(o.ExpiresAt().Add(time.Second), "late")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, offer.Pending, o.Status())
	})

	t.Run("should refuse after acceptance", func(t *testing.T) {
		o := newPendingOffer(t)
		require.NoError(t, o.Accept(offeredAt.Add(time.Minute)))

		require.ErrorIs(t, o.Reject(offeredAt.Add(2*time.Minute), "changed mind"), errs.ErrInvalidTransition)
	})
}

func TestOffer_Expire(t *testing.T) {
	t.Run("should expire pending offer regardless of deadline", func(t *testing.T) {
		o := newPendingOffer(t)

		require.NoError(t, o.Expire(offeredAt.Add(time.Minute), offer.ReasonSuperseded))

		assert.Equal(t, offer.Expired, o.Status())
		assert.Equal(t, "superseded", o.ResponseReason())
	})

	t.Run("should not expire an accepted offer", func(t *testing.T) {
		o := newPendingOffer(t)
		require.NoError(t, o.Accept(offeredAt.Add(time.Minute)))

		require.ErrorIs(t, o.Expire(o.ExpiresAt(), offer.ReasonDeadlineElapsed), errs.ErrInvalidTransition)
		assert.Equal(t, offer.Accepted, o.Status())
	})
}

func TestOffer_IsLive(t *testing.T) {
	o := newPendingOffer(t)

	assert.True(t, o.IsLive(offeredAt))
	assert.False(t, o.IsLive(o.ExpiresAt()))
	assert.True(t, o.IsElapsed(o.ExpiresAt()))

	require.NoError(t, o.Reject(offeredAt.Add(time.Minute), ""))
	assert.False(t, o.IsLive(offeredAt.Add(2*time.Minute)))
	assert.Empty(t, o.ResponseReason())
}

func TestRestoreOffer(t *testing.T) {
	respondedAt := offeredAt.Add(time.Hour)
	reason := "superseded"

	t.Run("should restore terminal offer", func(t *testing.T) {
		o, err := offer.RestoreOffer(kernel.NewUUID(), request.KindWastePickup, kernel.NewUUID(), kernel.NewUUID(),
			decimal.NewFromInt(80), offer.Expired, offeredAt, offeredAt.Add(time.Hour*2), &respondedAt, &reason)

		require.NoError(t, err)
		assert.Equal(t, offer.Expired, o.Status())
		assert.Equal(t, reason, o.ResponseReason())
		assert.Equal(t, respondedAt, *o.RespondedAt())
	})

	t.Run("should reject inconsistent response time", func(t *testing.T) {
		_, err := offer.RestoreOffer(kernel.NewUUID(), request.KindMove, kernel.NewUUID(), kernel.NewUUID(),
			decimal.NewFromInt(80), offer.Accepted, offeredAt, offeredAt.Add(time.Hour), nil, nil)
		require.Error(t, err)

		_, err = offer.RestoreOffer(kernel.NewUUID(), request.KindMove, kernel.NewUUID(), kernel.NewUUID(),
			decimal.NewFromInt(80), offer.Pending, offeredAt, offeredAt.Add(time.Hour), &respondedAt, nil)
		require.Error(t, err)
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := offer.RestoreOffer(kernel.NewUUID(), request.KindMove, kernel.NewUUID(), kernel.NewUUID(),
			decimal.NewFromInt(80), offer.Unknown, offeredAt, offeredAt.Add(time.Hour), nil, nil)
		require.Error(t, err)
	})
}

func TestOffer_Validate(t *testing.T) {
	var nilOffer *offer.Offer
	require.ErrorIs(t, nilOffer.Validate(), offer.ErrOfferIsNotConstructed)

	var zero offer.Offer
	require.ErrorIs(t, zero.Validate(), offer.ErrOfferIsNotConstructed)
}
