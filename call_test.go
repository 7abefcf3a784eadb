package injector_test

import (
	"reflect"
	"testing"

	"github.com/fcagreatgoals/injector"
	"github.com/fcagreatgoals/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlers struct {
	OnEvent func(name string) string
	Missing func()
	Count   int
	hidden  func()
}

type greeter struct{}

func (greeter) Greet(name string) string { return "hello " + name }

func (greeter) Explode() { panic("kaboom") }

func TestCall(t *testing.T) {
	newContainer := func(t *testing.T) *injector.Container {
		t.Helper()
		c, m := testutil.NewContainer(t)
		testutil.DeclareStandard(t, m)
		testutil.RegisterStandard(t, c)
		return c
	}

	t.Run("declared method resolves its class parameters", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)
		svc := injector.MustResolveClass[*testutil.TestService](c)

		got, err := c.Call(svc, "Describe", "> ")
		require.NoError(t, err)
		assert.Equal(t, "> svc:", got)
	})

	t.Run("undeclared method passes arguments through", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)
		svc := injector.MustResolveClass[*testutil.TestService](c)

		got, err := c.Call(svc, "Sum", 2, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	})

	t.Run("trailing error is returned", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)
		svc := injector.MustResolveClass[*testutil.TestService](c)

		got, err := c.Call(svc, "Sum", -2, 1)
		assert.ErrorIs(t, err, testutil.ErrTest)
		assert.Nil(t, got)
	})

	t.Run("result shapes", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)
		svc := injector.MustResolveClass[*testutil.TestService](c)

		got, err := c.Call(svc, "Touch")
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = c.Call(svc, "Pair")
		require.NoError(t, err)
		assert.Equal(t, []any{"svc", 3}, got)
	})

	t.Run("per parameter method keys", func(t *testing.T) {
		t.Parallel()
		c, m := testutil.NewContainer(t)
		require.NoError(t, m.Declare(reflect.TypeFor[*testutil.TestService](),
			injector.InjectMethodParam("Describe", 0, "prefix"),
			injector.InjectMethodParam("Describe", 1, nil),
		))
		require.NoError(t, c.Register("prefix", "# "))

		svc := &testutil.TestService{Name: "api"}
		got, err := injector.Invoke[string](c, svc, "Describe")
		require.NoError(t, err)
		assert.Equal(t, "# api:", got)

		_, err = c.Call(svc, "Describe", "extra")
		assert.ErrorIs(t, err, injector.ErrArgumentCountMismatch)
	})

	t.Run("declarations on the element type apply to pointers", func(t *testing.T) {
		t.Parallel()
		c, m := testutil.NewContainer(t)
		require.NoError(t, m.Declare(reflect.TypeFor[greeter](),
			injector.InjectMethodParam("Greet", 0, "who")))
		require.NoError(t, c.Register("who", "world"))

		got, err := injector.Invoke[string](c, &greeter{}, "Greet")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)

		got, err = injector.Invoke[string](c, greeter{}, "Greet")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("function field", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)
		h := &handlers{OnEvent: func(name string) string { return "event:" + name }}

		got, err := c.Call(h, "OnEvent", "start")
		require.NoError(t, err)
		assert.Equal(t, "event:start", got)
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)

		_, err := c.Call(greeter{}, "Explode")
		pErr := testutil.AssertErrorType[injector.PanicError](t, err)
		assert.Equal(t, "Explode", pErr.Method)
		assert.Equal(t, "kaboom", pErr.Panic)
		assert.Contains(t, err.Error(), "greeter.Explode panicked")
	})

	t.Run("argument type mismatch", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)

		_, err := c.Call(greeter{}, "Greet", 42)
		testutil.AssertErrorType[injector.TypeMismatchError](t, err)
	})

	t.Run("invoke result type mismatch", func(t *testing.T) {
		t.Parallel()
		c := newContainer(t)

		_, err := injector.Invoke[int](c, greeter{}, "Greet", "x")
		testutil.AssertErrorType[injector.TypeMismatchError](t, err)

		_, err = injector.Invoke[string](nil, greeter{}, "Greet", "x")
		assert.ErrorIs(t, err, injector.ErrContainerNil)
	})
}

func TestCall_NotCallable(t *testing.T) {
	var nilHandlers *handlers

	tests := []struct {
		name   string
		target any
		method string
	}{
		{name: "nil target", target: nil, method: "Greet"},
		{name: "unknown method", target: greeter{}, method: "Wave"},
		{name: "empty name", target: greeter{}, method: ""},
		{name: "non-function field", target: &handlers{}, method: "Count"},
		{name: "nil function field", target: &handlers{}, method: "Missing"},
		{name: "unexported field", target: &handlers{hidden: func() {}}, method: "hidden"},
		{name: "nil pointer target", target: nilHandlers, method: "OnEvent"},
		{name: "scalar target", target: 42, method: "String"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := testutil.NewContainer(t)

			_, err := c.Call(tt.target, tt.method)
			require.Error(t, err)
			assert.ErrorIs(t, err, injector.ErrNotCallable)
		})
	}
}
