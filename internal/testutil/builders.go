package testutil

import (
	"reflect"
	"testing"

	"github.com/fcagreatgoals/injector"
	"github.com/stretchr/testify/require"
)

// ContainerBuilder helps build test containers with an isolated metadata
// table.
type ContainerBuilder struct {
	t        *testing.T
	metadata *injector.Metadata
	opts     []injector.Option
	steps    []func(*injector.Container) error
}

// NewContainerBuilder creates a new container builder.
func NewContainerBuilder(t *testing.T) *ContainerBuilder {
	t.Helper()
	return &ContainerBuilder{
		t:        t,
		metadata: injector.NewMetadata(),
	}
}

// Metadata returns the builder's declaration table.
func (b *ContainerBuilder) Metadata() *injector.Metadata {
	return b.metadata
}

// WithOption adds a container option.
func (b *ContainerBuilder) WithOption(opt injector.Option) *ContainerBuilder {
	b.opts = append(b.opts, opt)
	return b
}

// Declare records declarations for t, failing the test on error.
func (b *ContainerBuilder) Declare(t reflect.Type, opts ...injector.DeclareOption) *ContainerBuilder {
	b.t.Helper()
	require.NoError(b.t, b.metadata.Declare(t, opts...))
	return b
}

// WithRegistration registers value under key when the container is built.
func (b *ContainerBuilder) WithRegistration(key, value any, opts ...injector.RegisterOption) *ContainerBuilder {
	b.steps = append(b.steps, func(c *injector.Container) error {
		return c.Register(key, value, opts...)
	})
	return b
}

// WithModule installs a module when the container is built.
func (b *ContainerBuilder) WithModule(module injector.ModuleOption) *ContainerBuilder {
	b.steps = append(b.steps, func(c *injector.Container) error {
		return c.Install(module)
	})
	return b
}

// Build creates the container and destroys it when the test ends.
func (b *ContainerBuilder) Build() *injector.Container {
	b.t.Helper()

	opts := append([]injector.Option{injector.WithMetadata(b.metadata)}, b.opts...)
	c := injector.New(opts...)

	for _, step := range b.steps {
		require.NoError(b.t, step(c))
	}

	b.t.Cleanup(func() {
		_ = c.Destroy()
	})

	return c
}

// NewContainer creates a container with an isolated metadata table.
func NewContainer(t *testing.T, opts ...injector.Option) (*injector.Container, *injector.Metadata) {
	t.Helper()
	b := NewContainerBuilder(t)
	for _, opt := range opts {
		b.WithOption(opt)
	}
	return b.Build(), b.Metadata()
}
