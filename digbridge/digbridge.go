// Package digbridge connects an injector.Container with a go.uber.org/dig
// container, so that applications migrating between the two can share
// instances in both directions.
//
// Values flow from injector into dig with Provide:
//
//	dc := dig.New()
//	digbridge.ProvideClass[*Database](dc, c)
//	dc.Invoke(func(db *Database) { ... })
//
// and from dig into injector with Register:
//
//	digbridge.Register[*Mailer](c, dc, injector.AsSingleton())
//	mailer, err := injector.ResolveClass[*Mailer](c)
package digbridge

import (
	"go.uber.org/dig"

	"github.com/fcagreatgoals/injector"
)

// Provide makes the value registered under key in c available to dc as T.
// The key is resolved each time dig builds T; dig itself caches the result.
func Provide[T any](dc *dig.Container, c *injector.Container, key any, opts ...dig.ProvideOption) error {
	if c == nil {
		return injector.ErrContainerNil
	}

	return dc.Provide(func() (T, error) {
		return injector.Resolve[T](c, key)
	}, opts...)
}

// ProvideClass is like Provide with the class of T as the key.
func ProvideClass[T any](dc *dig.Container, c *injector.Container, opts ...dig.ProvideOption) error {
	return Provide[T](dc, c, injector.Class[T](), opts...)
}

// Factory returns a function suitable for injector.Factory that obtains T
// from dc.
func Factory[T any](dc *dig.Container) func() (any, error) {
	return func() (any, error) {
		var out T
		if err := dc.Invoke(func(v T) { out = v }); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Register registers the class of T in c, built by dc instead of c's own
// declarations.
func Register[T any](c *injector.Container, dc *dig.Container, opts ...injector.RegisterOption) error {
	if c == nil {
		return injector.ErrContainerNil
	}

	class := injector.Class[T]()
	opts = append(opts, injector.Factory(Factory[T](dc)))

	return c.Register(class, class, opts...)
}
