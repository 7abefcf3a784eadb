package testutil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fcagreatgoals/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Keys used by the standard fixture.
const (
	KeyLogger = "logger"
	KeyTable  = "table"
	KeyName   = "name"
)

// DeclareStandard declares the standard test classes on m:
//
//   - *TestDatabase from NewTestDatabase with an injected *TestConfig
//   - *TestRepository from NewTestRepository, database injected and table
//     taken from the caller
//   - *TestService from NewTestService with per-parameter keys, its Logger
//     property and Describe method injected
func DeclareStandard(t *testing.T, m *injector.Metadata) {
	t.Helper()

	require.NoError(t, m.Declare(reflect.TypeFor[*TestDatabase](),
		injector.Constructor(NewTestDatabase),
		injector.InjectConstructor(),
	))

	require.NoError(t, m.Declare(reflect.TypeFor[*TestRepository](),
		injector.Constructor(NewTestRepository),
		injector.InjectConstructor(),
	))

	require.NoError(t, m.Declare(reflect.TypeFor[*TestService](),
		injector.Constructor(NewTestService),
		injector.InjectParam(0, nil),
		injector.InjectParam(1, KeyName),
		injector.InjectProperty("Logger", KeyLogger),
		injector.InjectMethod("Describe"),
	))
}

// RegisterStandard registers the values the standard fixture depends on.
func RegisterStandard(t *testing.T, c *injector.Container) {
	t.Helper()

	require.NoError(t, c.Register(injector.Class[*TestConfig](), &TestConfig{DSN: "memory"}))
	require.NoError(t, c.Register(KeyLogger, NewTestLogger()))
	require.NoError(t, c.Register(KeyName, "svc"))
}

// ErrorTestCase is a container operation expected to fail with Target.
type ErrorTestCase struct {
	Name   string
	Setup  func(t *testing.T, c *injector.Container)
	Run    func(c *injector.Container) error
	Target error
}

// RunErrorTestCases runs each case against a fresh container.
func RunErrorTestCases(t *testing.T, cases []ErrorTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			c, _ := NewContainer(t)
			if tc.Setup != nil {
				tc.Setup(t, c)
			}

			err := tc.Run(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.Target), "expected %v, got %v", tc.Target, err)
		})
	}
}
