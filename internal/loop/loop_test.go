package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := New(16)
	go l.Run(ctx)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, l.Submit(func() { got = append(got, i) }))
	}
	// Do is queued behind the submits, so everything before it has run.
	var snapshot []int
	require.NoError(t, l.Do(ctx, func() { snapshot = append(snapshot, got...) }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, snapshot)
}

func TestLoopSerializesConcurrentSubmitters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := New(4)
	go l.Run(ctx)

	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = l.Do(ctx, func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, l.Do(ctx, func() { n = counter }))
	assert.Equal(t, 800, n)
}

func TestLoopClosed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(1)
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	<-l.Done()
	assert.False(t, l.Submit(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrClosed)
}

func TestDoHonoursContext(t *testing.T) {
	l := New(1) // never run
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
