package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitReady_RetriesUntilUp(t *testing.T) {
	p := &flakyPinger{failures: 2}
	require.NoError(t, WaitReady(context.Background(), p, 5*time.Second))
	require.Equal(t, 3, p.calls)
}

func TestWaitReady_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	err := WaitReady(context.Background(), p, 300*time.Millisecond)
	require.Error(t, err)
}

func TestWaitReady_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyPinger{failures: 1 << 30}
	require.Error(t, WaitReady(ctx, p, time.Minute))
}

func TestNullDecimal(t *testing.T) {
	d, err := nullDecimal(nil)
	require.NoError(t, err)
	require.False(t, d.Valid)

	s := "65000.1700000000000000"
	d, err = nullDecimal(&s)
	require.NoError(t, err)
	require.True(t, d.Valid)
	require.Equal(t, "65000.17", d.Decimal.String())

	bad := "abc"
	_, err = nullDecimal(&bad)
	require.Error(t, err)
}
