package injector_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fcagreatgoals/injector"
	"github.com/fcagreatgoals/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	// The default container is process-wide, so these subtests run in order.
	t.Cleanup(func() {
		injector.SetDefault(nil)
	})

	t.Run("created on first use", func(t *testing.T) {
		injector.SetDefault(nil)

		c := injector.Default()
		require.NotNil(t, c)
		assert.Same(t, c, injector.Default())
	})

	t.Run("can set and get default container", func(t *testing.T) {
		c, _ := testutil.NewContainer(t)
		require.NoError(t, c.Register(testutil.KeyLogger, testutil.NewTestLogger()))

		injector.SetDefault(c)
		assert.Same(t, c, injector.Default())

		logger := testutil.AssertResolvable[testutil.TestLogger](t, injector.Default(), testutil.KeyLogger)
		assert.NotNil(t, logger)
	})

	t.Run("reset creates a fresh container", func(t *testing.T) {
		c, _ := testutil.NewContainer(t)
		injector.SetDefault(c)

		injector.SetDefault(nil)
		fresh := injector.Default()
		assert.NotSame(t, c, fresh)
		assert.Equal(t, 0, fresh.Len())
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		injector.SetDefault(nil)

		const goroutines = 100
		containers := make([]*injector.Container, 10)
		for i := range containers {
			containers[i], _ = testutil.NewContainer(t)
		}

		var wg sync.WaitGroup
		for i := range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if i%2 == 0 {
					injector.SetDefault(containers[i%len(containers)])
					return
				}
				assert.NotNil(t, injector.Default())
			}()
		}
		wg.Wait()
	})
}

func TestContext(t *testing.T) {
	c, _ := testutil.NewContainer(t)

	ctx := injector.NewContext(context.Background(), c)
	got, err := injector.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = injector.FromContext(context.Background())
	assert.ErrorIs(t, err, injector.ErrNoContainer)

	//nolint:staticcheck // a nil context is rejected, not dereferenced
	_, err = injector.FromContext(nil)
	assert.ErrorIs(t, err, injector.ErrNoContainer)

	_, err = injector.FromContext(injector.NewContext(context.Background(), nil))
	assert.ErrorIs(t, err, injector.ErrNoContainer)
}
