package circuitbreaker

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestNew_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := New[int](Settings{
		Name:                "test",
		ConsecutiveFailures: 2,
		OpenTimeout:         time.Minute,
		Logger:              slog.New(slog.DiscardHandler),
	})

	for range 2 {
		_, err := cb.Execute(func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	called := false
	_, err := cb.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestNew_ZeroThresholdNeverTrips(t *testing.T) {
	cb := New[int](Settings{Name: "never", Logger: slog.New(slog.DiscardHandler)})

	for range 10 {
		_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	}

	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestNew_TrialRequestClosesAfterTimeout(t *testing.T) {
	cb := New[int](Settings{
		Name:                "half-open",
		ConsecutiveFailures: 1,
		OpenTimeout:         10 * time.Millisecond,
		Logger:              slog.New(slog.DiscardHandler),
	})

	_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	require.Equal(t, gobreaker.StateOpen, cb.State())

	require.Eventually(t, func() bool {
		return cb.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestNew_IsSuccessfulKeepsErrorsOutOfFailureCount(t *testing.T) {
	errRejected := errors.New("rejected")
	cb := New[int](Settings{
		Name:                "rejections",
		ConsecutiveFailures: 2,
		OpenTimeout:         time.Minute,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
		Logger: slog.New(slog.DiscardHandler),
	})

	for range 5 {
		_, err := cb.Execute(func() (int, error) { return 0, errRejected })
		require.ErrorIs(t, err, errRejected)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Zero(t, cb.Counts().ConsecutiveFailures)

	for range 2 {
		_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
