package injector

import "fmt"

// Hooks are lifecycle callbacks of a registration.
type Hooks struct {
	// OnCreate runs immediately before an instance is constructed. It
	// receives the registered value. For a registration with a Factory it
	// runs before the factory is called.
	OnCreate func(value any)

	// OnDestroy runs immediately before the registration is removed. It
	// receives the cached instance if there is one, the registered value
	// otherwise.
	OnDestroy func(value any)
}

// Options is the normalized form of a registration's options.
type Options struct {
	// Singleton caches the constructed instance.
	Singleton bool

	// Lazy defers construction of a singleton to its first resolution. Nil
	// means false: singletons are built during Register. Setting it on a
	// non-singleton registration is invalid.
	Lazy *bool

	// Factory replaces dependency resolution when constructing a class.
	Factory func() (any, error)

	Hooks Hooks

	// Validate checks the registered value before it is stored.
	Validate func(value any) bool

	// Args are caller arguments used to construct an eager singleton.
	Args []any

	malformed []string
}

// IsLazy reports whether a singleton is built on first resolution.
func (o *Options) IsLazy() bool {
	return o.Singleton && o.Lazy != nil && *o.Lazy
}

// Lifetime returns the lifetime the options describe.
func (o *Options) Lifetime() Lifetime {
	switch {
	case !o.Singleton:
		return Transient
	case o.IsLazy():
		return LazySingleton
	default:
		return Singleton
	}
}

// check reports inconsistent or malformed fields.
func (o *Options) check() error {
	if len(o.malformed) > 0 {
		return OptionsError{Field: o.malformed[0], Reason: "must be a non-nil function"}
	}

	if o.Lazy != nil && !o.Singleton {
		return OptionsError{Field: "lazy", Reason: "is only allowed on singleton registrations"}
	}

	return nil
}

// A RegisterOption modifies the default behavior of Register.
type RegisterOption interface {
	applyRegisterOption(*Options)
}

func newOptions(opts []RegisterOption) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRegisterOption(o)
	}
	return o
}

// AsSingleton is a RegisterOption that caches the constructed instance.
// The instance is built during Register unless Lazy(true) is also given.
func AsSingleton() RegisterOption {
	return singletonOption{}
}

type singletonOption struct{}

func (singletonOption) String() string {
	return "AsSingleton()"
}

func (singletonOption) applyRegisterOption(o *Options) {
	o.Singleton = true
}

// Lazy is a RegisterOption that sets whether a singleton is built on first
// resolution (true) or at registration time (false).
func Lazy(lazy bool) RegisterOption {
	return lazyOption(lazy)
}

type lazyOption bool

func (o lazyOption) String() string {
	return fmt.Sprintf("Lazy(%t)", bool(o))
}

func (o lazyOption) applyRegisterOption(opts *Options) {
	v := bool(o)
	opts.Lazy = &v
}

// Eager is AsSingleton() with Lazy(false) spelled out.
func Eager() RegisterOption {
	return lifetimeOption(Singleton)
}

// WithLifetime is a RegisterOption that sets the singleton and lazy options
// from a Lifetime.
func WithLifetime(l Lifetime) RegisterOption {
	return lifetimeOption(l)
}

type lifetimeOption Lifetime

func (o lifetimeOption) String() string {
	return fmt.Sprintf("WithLifetime(%s)", Lifetime(o))
}

func (o lifetimeOption) applyRegisterOption(opts *Options) {
	switch Lifetime(o) {
	case Transient:
		opts.Singleton = false
		opts.Lazy = nil
	case Singleton:
		lazy := false
		opts.Singleton = true
		opts.Lazy = &lazy
	case LazySingleton:
		lazy := true
		opts.Singleton = true
		opts.Lazy = &lazy
	default:
		opts.malformed = append(opts.malformed, "lifetime")
	}
}

// Factory is a RegisterOption that builds class instances with fn instead of
// dependency resolution.
func Factory(fn func() (any, error)) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		if fn == nil {
			o.malformed = append(o.malformed, "factory")
		}
		o.Factory = fn
	})
}

// OnCreate is a RegisterOption that sets the creation hook.
func OnCreate(fn func(value any)) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		if fn == nil {
			o.malformed = append(o.malformed, "hooks.onCreate")
		}
		o.Hooks.OnCreate = fn
	})
}

// OnDestroy is a RegisterOption that sets the destruction hook.
func OnDestroy(fn func(value any)) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		if fn == nil {
			o.malformed = append(o.malformed, "hooks.onDestroy")
		}
		o.Hooks.OnDestroy = fn
	})
}

// Validate is a RegisterOption that rejects values for which fn returns false.
func Validate(fn func(value any) bool) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		if fn == nil {
			o.malformed = append(o.malformed, "validate")
		}
		o.Validate = fn
	})
}

// Args is a RegisterOption that supplies caller arguments for an eager
// singleton's construction.
func Args(args ...any) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		o.Args = append(o.Args, args...)
	})
}

// WithOptions is a RegisterOption that applies a whole Options value. Fields
// of opts overwrite what earlier options set.
func WithOptions(opts Options) RegisterOption {
	return registerOptionFunc(func(o *Options) {
		malformed := o.malformed
		*o = opts
		o.malformed = append(malformed, opts.malformed...)
	})
}

type registerOptionFunc func(*Options)

func (f registerOptionFunc) applyRegisterOption(o *Options) {
	f(o)
}
