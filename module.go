package injector

import "reflect"

// ModuleOption represents a registration action within a module.
type ModuleOption func(*Container) error

// NewModule creates a new module with the given name and builders.
// Modules are a way to group related registrations and declarations.
//
// Example:
//
//	var DatabaseModule = injector.NewModule("database",
//	    injector.Declared[*Database](injector.Constructor(NewDatabase), injector.InjectConstructor()),
//	    injector.Injectable[*Database](injector.AsSingleton()),
//	    injector.Register("dsn", "postgres://localhost/app"),
//	)
//
//	var AppModule = injector.NewModule("app",
//	    DatabaseModule,
//	    injector.Injectable[*UserService](),
//	)
func NewModule(name string, builders ...ModuleOption) ModuleOption {
	return func(c *Container) error {
		for _, builder := range builders {
			if builder == nil {
				continue
			}

			if err := builder(c); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// Register creates a ModuleOption registering value under key.
func Register(key, value any, opts ...RegisterOption) ModuleOption {
	return func(c *Container) error {
		return c.Register(key, value, opts...)
	}
}

// Injectable creates a ModuleOption registering the class of T under itself.
func Injectable[T any](opts ...RegisterOption) ModuleOption {
	return func(c *Container) error {
		return RegisterClass[T](c, opts...)
	}
}

// Declared creates a ModuleOption recording declarations for T in the
// container's metadata table.
func Declared[T any](opts ...DeclareOption) ModuleOption {
	return func(c *Container) error {
		return c.metadata.Declare(reflect.TypeFor[T](), opts...)
	}
}

// Install runs modules against the container in order and stops at the
// first failure. Registrations made before the failure are kept.
func (c *Container) Install(modules ...ModuleOption) error {
	if c == nil {
		return ErrContainerNil
	}

	for i, m := range modules {
		if m == nil {
			continue
		}

		if err := m(c); err != nil {
			c.logger.Debug("module install failed", "index", i, "error", err)
			return err
		}
	}

	return nil
}
