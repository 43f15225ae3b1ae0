package offer_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	assert.Equal(t, 0, int(offer.Unknown))
	assert.Equal(t, 1, int(offer.Pending))
	assert.Equal(t, 2, int(offer.Accepted))
	assert.Equal(t, 3, int(offer.Rejected))
	assert.Equal(t, 4, int(offer.Expired))
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []offer.Status{offer.Pending, offer.Accepted, offer.Rejected, offer.Expired} {
		t.Run(fmt.Sprintf("should validate %s status", s), func(t *testing.T) {
			require.NoError(t, s.Validate())
		})
	}

	for _, s := range []offer.Status{offer.Unknown, offer.Status(-1), offer.Status(5)} {
		t.Run(fmt.Sprintf("should reject status value %d", int(s)), func(t *testing.T) {
			err := s.Validate()

			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("%d is not a valid status", int(s)))
		})
	}
}

func TestStatus_Transitions(t *testing.T) {
	t.Run("should leave Pending to every terminal state", func(t *testing.T) {
		next, err := offer.Pending.Accept()
		require.NoError(t, err)
		assert.Equal(t, offer.Accepted, next)

		next, err = offer.Pending.Reject()
		require.NoError(t, err)
		assert.Equal(t, offer.Rejected, next)

		next, err = offer.Pending.Expire()
		require.NoError(t, err)
		assert.Equal(t, offer.Expired, next)
	})

	t.Run("should refuse any transition out of a terminal state", func(t *testing.T) {
		for _, from := range []offer.Status{offer.Accepted, offer.Rejected, offer.Expired, offer.Unknown} {
			for name, transition := range map[string]func() (offer.Status, error){
				"accept": from.Accept,
				"reject": from.Reject,
				"expire": from.Expire,
			} {
				t.Run(fmt.Sprintf("should refuse %s from %s", name, from), func(t *testing.T) {
					next, err := transition()

					require.ErrorIs(t, err, errs.ErrInvalidTransition)
					assert.Equal(t, offer.Unknown, next)
				})
			}
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, offer.Pending.IsTerminal())
	assert.True(t, offer.Accepted.IsTerminal())
	assert.True(t, offer.Rejected.IsTerminal())
	assert.True(t, offer.Expired.IsTerminal())
}
