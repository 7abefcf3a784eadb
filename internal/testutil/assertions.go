package testutil

import (
	"errors"
	"testing"

	"github.com/fcagreatgoals/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertResolvable checks that key resolves to a non-nil T
func AssertResolvable[T any](t *testing.T, c *injector.Container, key any, args ...any) T {
	t.Helper()
	value, err := injector.Resolve[T](c, key, args...)
	require.NoError(t, err, "failed to resolve %v", key)
	require.NotNil(t, value, "resolved value is nil")
	return value
}

// AssertClassResolvable checks that the class of T resolves
func AssertClassResolvable[T any](t *testing.T, c *injector.Container, args ...any) T {
	t.Helper()
	return AssertResolvable[T](t, c, injector.Class[T](), args...)
}

// AssertUnregistered checks that resolving key fails with ErrUnregisteredKey
func AssertUnregistered(t *testing.T, c *injector.Container, key any) {
	t.Helper()
	_, err := c.Resolve(key)
	assert.Error(t, err)
	assert.ErrorIs(t, err, injector.ErrUnregisteredKey)
}

// AssertPanicsWithError checks that f panics with an error matching expected
func AssertPanicsWithError(t *testing.T, expected error, f func(), msgAndArgs ...any) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, msgAndArgs...)

		err, ok := r.(error)
		require.True(t, ok, "panic value is not an error: %v", r)
		assert.ErrorIs(t, err, expected, msgAndArgs...)
	}()
	f()
}

// AssertSameInstance checks that two values are the same pointer
func AssertSameInstance(t *testing.T, expected, actual any, msgAndArgs ...any) {
	t.Helper()
	assert.Same(t, expected, actual, msgAndArgs...)
}

// AssertDifferentInstances checks that two values are different pointers
func AssertDifferentInstances(t *testing.T, first, second any, msgAndArgs ...any) {
	t.Helper()
	assert.NotSame(t, first, second, msgAndArgs...)
}

// AssertErrorType checks that err is, or wraps, an error of type T
func AssertErrorType[T error](t *testing.T, err error, msgAndArgs ...any) T {
	t.Helper()
	var target T
	require.True(t, errors.As(err, &target), msgAndArgs...)
	return target
}

// AssertCircularDependency checks that err is a circular dependency error
func AssertCircularDependency(t *testing.T, err error) injector.CircularDependencyError {
	t.Helper()
	assert.ErrorIs(t, err, injector.ErrCircularDependency)
	return AssertErrorType[injector.CircularDependencyError](t, err)
}
