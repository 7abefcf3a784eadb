// Package injector provides a runtime dependency injection container for Go
// applications. Values and classes are registered under arbitrary keys and
// resolved by key, with dependencies declared up front in a metadata table
// instead of struct tags or code generation.
//
// # Overview
//
// A Container maps keys to registrations. A key is any comparable value: a
// string, an int, a custom type, or a ClassRef. A registration holds either
// a plain value, returned as is, or a ClassRef, which the container
// constructs on demand:
//
//	c := injector.New()
//	defer c.Destroy()
//
//	c.Register("dsn", "postgres://localhost/app")
//	c.Register("db", injector.Class[*Database](), injector.AsSingleton())
//
//	db, err := injector.Resolve[*Database](c, "db")
//
// # Declarations
//
// Dependencies are declared per type in a Metadata table. A constructor's
// parameters can be injected all at once, where class-typed parameters are
// resolved and the others are taken from the caller:
//
//	injector.MustDeclare[*Database](
//	    injector.Constructor(NewDatabase),
//	    injector.InjectConstructor(),
//	)
//
// or one at a time, where every parameter is resolved by key:
//
//	injector.MustDeclare[*Mailer](
//	    injector.Constructor(NewMailer),
//	    injector.InjectParam(0, "smtp.host"),
//	    injector.InjectParam(1, nil), // the parameter's own class
//	)
//
// The two forms cannot be mixed on one member. Exported fields are injected
// after construction with InjectProperty, and methods invoked through
// Container.Call take their arguments from InjectMethod and
// InjectMethodParam declarations.
//
// A type counts as a class when it has a declaration or is a pointer to a
// struct. Classes resolve even when they were never registered: the container
// builds them ad hoc, without caching and without hooks.
//
// # Lifetimes
//
// Registrations of a ClassRef have one of three lifetimes:
//
//   - Transient: a new instance on every resolution (the default)
//   - Singleton: built during Register and cached (AsSingleton or Eager)
//   - LazySingleton: built on first resolution and cached (AsSingleton
//     with Lazy(true))
//
// A Factory option replaces dependency resolution for a class registration
// and follows the same lifetime rules.
//
// # Lifecycle
//
// OnCreate hooks run immediately before each construction with the
// registered value. OnDestroy hooks run when a registration is removed by
// Unregister, Destroy or Shutdown. Cached instances implementing Disposable
// or DisposableWithContext are closed after removal.
//
// # Errors
//
// Every failure is returned as a typed error that matches one of the
// package's sentinel errors through errors.Is:
//
//	_, err := c.Resolve("missing")
//	if errors.Is(err, injector.ErrUnregisteredKey) {
//	    // handle missing registration
//	}
//
// Errors from nested resolutions are returned unwrapped, so the error of a
// missing dependency deep in the graph names that dependency's key.
//
// # Modules
//
// Modules group related declarations and registrations:
//
//	var DatabaseModule = injector.NewModule("database",
//	    injector.Declared[*Database](injector.Constructor(NewDatabase), injector.InjectConstructor()),
//	    injector.Injectable[*Database](injector.AsSingleton()),
//	)
//
//	c.Install(DatabaseModule)
//
// # Thread Safety
//
// Container and Metadata are safe for concurrent use. A lazy singleton is
// constructed at most once even when resolved from several goroutines. Hooks
// and factories may use the container while a lazy singleton is being
// built; resolving that same singleton again from the building goroutine
// fails with CircularDependencyError.
package injector
