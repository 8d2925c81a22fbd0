//go:build unix

package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSignals(t *testing.T) {
	coord, ctx := New(context.Background())
	exited := make(chan int, 1)
	coord.exit = func(code int) { exited <- code }

	stop := coord.HandleSignals()
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("SIGTERM should trigger shutdown")
	}
	assert.Contains(t, coord.ShutdownReason(), "terminated")

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case code := <-exited:
		assert.Equal(t, 130, code)
	case <-time.After(2 * time.Second):
		t.Fatal("second signal should force exit")
	}
}
