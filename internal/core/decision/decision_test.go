package decision

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_FirstResolutionWins(t *testing.T) {
	c := New()

	assert.False(t, c.Resolved())
	assert.True(t, c.Resolve(Decision{Approved: true, Feedback: "first"}))
	assert.False(t, c.Resolve(Decision{Approved: false, Feedback: "second"}))
	assert.True(t, c.Resolved())

	d, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Approved)
	assert.Equal(t, "first", d.Feedback)
}

func TestChannel_WaitBlocksUntilResolve(t *testing.T) {
	c := New()

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Resolve(Decision{Approved: false, Feedback: "needs work"})
	}()

	d, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, d.Approved)
	assert.Equal(t, "needs work", d.Feedback)
}

func TestChannel_WaitHonorsContext(t *testing.T) {
	c := New()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_ConcurrentResolvers(t *testing.T) {
	c := New()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range n {
		wg.Add(1)
		go func(approved bool) {
			defer wg.Done()
			if c.Resolve(Decision{Approved: approved}) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one resolver may win")

	// The waiter receives exactly the winning payload; drain without blocking.
	d, err := c.Wait(context.Background())
	require.NoError(t, err)
	_ = d
}

func TestChannel_ExtraFlagsCarried(t *testing.T) {
	c := New()
	c.Resolve(Decision{
		Approved: true,
		Extra:    map[string]string{"agent": "builder", "permission": "acceptEdits"},
	})

	d, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "builder", d.Extra["agent"])
	assert.Equal(t, "acceptEdits", d.Extra["permission"])
}
