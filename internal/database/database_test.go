package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastDial(t *testing.T) {
	t.Helper()
	attempts, backoff := dialAttempts, dialBackoff
	dialAttempts, dialBackoff = 3, time.Millisecond
	t.Cleanup(func() { dialAttempts, dialBackoff = attempts, backoff })
}

func TestWaitReady_RetriesUntilUp(t *testing.T) {
	fastDial(t)
	calls := 0
	err := waitReady(context.Background(), "fake", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitReady_GivesUp(t *testing.T) {
	fastDial(t)
	down := errors.New("connection refused")
	err := waitReady(context.Background(), "fake", func(context.Context) error { return down }, zerolog.Nop())
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestNewRedisClient(t *testing.T) {
	fastDial(t)
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0", zerolog.Nop())
	require.NoError(t, err)
	defer rdb.Close()

	_, err = NewRedisClient(context.Background(), "not a url", zerolog.Nop())
	assert.Error(t, err)
}
