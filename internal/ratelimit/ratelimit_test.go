package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(1, 3)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestBurstFloorIsOne(t *testing.T) {
	l := New(1, 0)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestWaitRespectsContext(t *testing.T) {
	l := New(0.001, 1)
	require.True(t, l.Allow()) // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.Error(t, err)
}
