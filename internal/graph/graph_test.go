package graph_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fcagreatgoals/injector/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing key")

// recordingResolver resolves keys from a map and records the order of calls.
type recordingResolver struct {
	values map[any]any
	calls  []any
}

func (r *recordingResolver) Resolve(key any) (any, error) {
	r.calls = append(r.calls, key)
	v, ok := r.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", errMissing, key)
	}
	return v, nil
}

func newResolver(values map[any]any) *recordingResolver {
	return &recordingResolver{values: values}
}

func TestBuilder_WholeMember(t *testing.T) {
	tests := []struct {
		name     string
		slots    []graph.Slot
		args     []any
		expected []any
		calls    []any
	}{
		{
			name:     "only declared slots",
			slots:    []graph.Slot{graph.Declared("a"), graph.Declared("b")},
			expected: []any{"A", "B"},
			calls:    []any{"a", "b"},
		},
		{
			name:     "caller slots consume arguments left to right",
			slots:    []graph.Slot{graph.Caller(), graph.Declared("a"), graph.Caller()},
			args:     []any{1, 2},
			expected: []any{1, "A", 2},
			calls:    []any{"a"},
		},
		{
			name:     "missing caller arguments become nil",
			slots:    []graph.Slot{graph.Caller(), graph.Caller()},
			args:     []any{1},
			expected: []any{1, nil},
		},
		{
			name:     "extra caller arguments are ignored",
			slots:    []graph.Slot{graph.Caller()},
			args:     []any{1, 2, 3},
			expected: []any{1},
		},
		{
			name:     "empty list yields no arguments",
			slots:    []graph.Slot{},
			args:     []any{1},
			expected: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(map[any]any{"a": "A", "b": "B"})
			b := graph.NewBuilder(r)

			got, err := b.Arguments(graph.Member{Owner: "Svc", Name: "constructor", Whole: tt.slots}, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.calls, r.calls)
		})
	}
}

func TestBuilder_PerParameter(t *testing.T) {
	t.Run("declared and positional keys", func(t *testing.T) {
		r := newResolver(map[any]any{"db": "DB", "cache": "CACHE", "log": "LOG"})
		b := graph.NewBuilder(r)

		m := graph.Member{
			Owner:     "Svc",
			Name:      "constructor",
			Params:    map[int]any{1: "db"},
			NumParams: 3,
		}

		got, err := b.Arguments(m, []any{"log", "cache"})
		require.NoError(t, err)
		assert.Equal(t, []any{"LOG", "DB", "CACHE"}, got)
		assert.Equal(t, []any{"log", "db", "cache"}, r.calls)
	})

	t.Run("count mismatch", func(t *testing.T) {
		b := graph.NewBuilder(newResolver(nil))

		m := graph.Member{
			Owner:     "Svc",
			Name:      "Run",
			Params:    map[int]any{0: "db"},
			NumParams: 3,
		}

		_, err := b.Arguments(m, []any{"only-one"})
		require.Error(t, err)
		assert.ErrorIs(t, err, graph.ErrArgumentCountMismatch)

		var countErr graph.ArgumentCountError
		require.True(t, errors.As(err, &countErr))
		assert.Equal(t, 3, countErr.Expected)
		assert.Equal(t, 1, countErr.Declared)
		assert.Equal(t, 1, countErr.Supplied)
		assert.Contains(t, countErr.Error(), "Svc.Run")
	})

	t.Run("nested errors are returned untouched", func(t *testing.T) {
		b := graph.NewBuilder(newResolver(nil))

		m := graph.Member{Owner: "Svc", Name: "constructor", Params: map[int]any{0: "nope"}, NumParams: 1}

		_, err := b.Arguments(m, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errMissing)
	})
}

func TestBuilder_Conflict(t *testing.T) {
	b := graph.NewBuilder(newResolver(nil))

	m := graph.Member{
		Owner:     "Svc",
		Name:      "constructor",
		Whole:     []graph.Slot{graph.Caller()},
		Params:    map[int]any{0: "a"},
		NumParams: 1,
	}

	_, err := b.Arguments(m, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrConflictingDeclaration)
	assert.True(t, m.Declared())
}

func TestBuilder_Passthrough(t *testing.T) {
	r := newResolver(nil)
	b := graph.NewBuilder(r)

	args := []any{"x", 2}
	got, err := b.Arguments(graph.Member{Owner: "Svc", Name: "constructor"}, args)
	require.NoError(t, err)
	assert.Equal(t, args, got)
	assert.Empty(t, r.calls)

	// The returned slice must not alias the caller's.
	got[0] = "changed"
	assert.Equal(t, "x", args[0])
}

func TestBuilder_Properties(t *testing.T) {
	r := newResolver(map[any]any{"log": "LOG", "db": "DB"})
	b := graph.NewBuilder(r)

	values, err := b.Properties([]graph.Property{{Name: "Log", Key: "log"}, {Name: "DB", Key: "db"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"LOG", "DB"}, values)

	_, err = b.Properties([]graph.Property{{Name: "Missing", Key: "missing"}})
	assert.ErrorIs(t, err, errMissing)
}

func TestNewBuilder_NilResolverPanics(t *testing.T) {
	assert.Panics(t, func() { graph.NewBuilder(nil) })
}

func TestResolverFunc(t *testing.T) {
	f := graph.ResolverFunc(func(key any) (any, error) { return fmt.Sprint(key, "!"), nil })
	v, err := f.Resolve("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", v)
}

func TestCircularDependencyError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := graph.CircularDependencyError{Key: "a", Path: []any{"a", "b"}}
		msg := err.Error()
		assert.True(t, strings.HasPrefix(msg, "circular dependency detected"))
		assert.Contains(t, msg, "a (cycle)")
		assert.Contains(t, msg, "b")
		assert.ErrorIs(t, err, graph.ErrCircularDependency)
	})

	t.Run("self cycle", func(t *testing.T) {
		err := graph.CircularDependencyError{Key: "self"}
		assert.Contains(t, err.Error(), "self (cycle)")
	})
}

func TestConflictError_Message(t *testing.T) {
	assert.Equal(t, "conflicting dependency declaration on A.b", graph.ConflictError{Owner: "A", Member: "b"}.Error())
	assert.Equal(t, "conflicting dependency declaration on A.b: twice",
		graph.ConflictError{Owner: "A", Member: "b", Detail: "twice"}.Error())
}
