package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(2, time.Minute)
	b.now = func() time.Time { return now }

	fail := func() error { return assert.AnError }
	calls := 0
	ok := func() error { calls++; return nil }

	assert.ErrorIs(t, b.Do(fail), assert.AnError)
	assert.False(t, b.Open())
	assert.ErrorIs(t, b.Do(fail), assert.AnError)
	assert.True(t, b.Open())

	assert.ErrorIs(t, b.Do(ok), ErrOpen)
	assert.Zero(t, calls)

	// cool-down elapsed: one probe goes through and closes the breaker
	now = now.Add(time.Minute + time.Second)
	assert.False(t, b.Open())
	assert.NoError(t, b.Do(ok))
	assert.Equal(t, 1, calls)
	assert.False(t, b.Open())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(1, time.Minute)
	b.now = func() time.Time { return now }

	_ = b.Do(func() error { return assert.AnError })
	now = now.Add(2 * time.Minute)

	assert.ErrorIs(t, b.Do(func() error { return assert.AnError }), assert.AnError)
	assert.True(t, b.Open())
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrOpen)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := New(2, time.Minute)

	_ = b.Do(func() error { return assert.AnError })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return assert.AnError })

	assert.False(t, b.Open())
}
