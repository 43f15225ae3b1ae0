package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectOfferCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	reject := func(f *fixture, id kernel.UUID, reason string) (commands.RejectOfferResult, error) {
		cmd, err := commands.NewRejectOfferCommand(id, reason)
		require.NoError(t, err)
		return f.reject.Handle(ctx, cmd)
	}

	t.Run("should reopen the job when the last offer is rejected", func(t *testing.T) {
		f := newFixture(t, true)
		j := f.submitJob(t)
		o := f.offerJob(t, j.ID(), kernel.NewUUID())

		result, err := reject(f, o.ID(), "  too far  ")
		require.NoError(t, err)
		assert.Equal(t, job.Open, result.Job.Status())

		stored := f.getOffer(t, o.ID())
		assert.Equal(t, offer.Rejected, stored.Status())
		assert.Equal(t, "too far", stored.ResponseReason())
		assert.Equal(t, job.Open, f.getJob(t, j.ID()).Status())
	})

	t.Run("should keep the job offered while other offers are pending", func(t *testing.T) {
		f := newFixture(t, true)
		j := f.submitJob(t)
		o := f.offerJob(t, j.ID(), kernel.NewUUID())
		f.offerJob(t, j.ID(), kernel.NewUUID())

		_, err := reject(f, o.ID(), "")
		require.NoError(t, err)

		assert.Equal(t, job.Offered, f.getJob(t, j.ID()).Status())
		assert.Equal(t, 1, f.pendingCount(t, j.ID()))
	})

	t.Run("should refuse to reject an elapsed offer", func(t *testing.T) {
		f := newFixture(t, true)
		j := f.submitJob(t)
		o := f.offerJob(t, j.ID(), kernel.NewUUID())

		f.clock.Advance(offer.DefaultTTL + time.Second)
		_, err := reject(f, o.ID(), "")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should refuse to reject an accepted offer", func(t *testing.T) {
		f := newFixture(t, true)
		j := f.submitJob(t)
		o := f.offerJob(t, j.ID(), kernel.NewUUID())

		acceptCmd, err := commands.NewAcceptOfferCommand(o.ID())
		require.NoError(t, err)
		_, err = f.accept.Handle(ctx, acceptCmd)
		require.NoError(t, err)

		_, err = reject(f, o.ID(), "changed my mind")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, job.Assigned, f.getJob(t, j.ID()).Status())
	})

	t.Run("should fail validation on a zero value", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.reject.Handle(ctx, commands.RejectOfferCommand{})
		assert.ErrorIs(t, err, commands.ErrRejectOfferCommandIsNotConstructed)
	})
}
