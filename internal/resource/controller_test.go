package resource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilControllerIsNoop(t *testing.T) {
	var c *Controller

	ctx := context.Background()
	require.NoError(t, c.AcquireWorker(ctx))
	c.ReleaseWorker()
	require.NoError(t, c.WaitIO(ctx, 1<<20))
}

func TestWorkerLimit(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	ctx := context.Background()

	var active, peak atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, c.AcquireWorker(ctx))
			defer c.ReleaseWorker()

			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestAcquireWorkerCancelled(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})

	require.NoError(t, c.AcquireWorker(context.Background()))
	defer c.ReleaseWorker()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireWorker(ctx))
}

func TestWaitIOSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1, IOLimitBytesPerSec: 1 << 30})

	// Larger than burst; must not error out.
	require.NoError(t, c.WaitIO(context.Background(), (1<<30)+1234))
}
