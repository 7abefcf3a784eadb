// Package fiber provides injector integration for the Fiber web framework.
//
// This package provides middleware attaching a container to each request
// and type-safe handler wrappers for resolving controllers.
//
// Example usage:
//
//	c := injector.New()
//	injector.RegisterClass[*UserController](c, injector.AsSingleton())
//
//	app := fiber.New()
//	app.Use(injectorfiber.ContainerMiddleware(c))
//
//	app.Get("/users/:id", injectorfiber.Handle((*UserController).GetByID))
//	app.Post("/users", injectorfiber.Invoke[*UserController]("Create"))
package fiber

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/fcagreatgoals/injector"
)

const containerKey = "injector_container"

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(*fiber.Ctx, error) error

	// Middlewares are functions that run after the container is attached.
	Middlewares []func(*injector.Container, *fiber.Ctx) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for middleware failures.
func WithErrorHandler(h func(*fiber.Ctx, error) error) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function that runs after the container is
// attached. Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*injector.Container, *fiber.Ctx) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return internalError(c)
		},
	}
}

// ContainerMiddleware creates a fiber.Handler that stores c in the request
// locals and in the user context. Use FromContext or injector.FromContext
// with c.UserContext() to retrieve it.
//
// Example:
//
//	app := fiber.New()
//	app.Use(injectorfiber.ContainerMiddleware(c))
func ContainerMiddleware(c *injector.Container, opts ...Option) fiber.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *fiber.Ctx) error {
		ctx.SetUserContext(injector.NewContext(ctx.UserContext(), c))
		ctx.Locals(containerKey, c)

		for _, mw := range cfg.Middlewares {
			if err := mw(c, ctx); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}
		}

		return ctx.Next()
	}
}

// HandlerConfig holds configuration for the handler wrappers.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*fiber.Ctx, any) error

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(*fiber.Ctx, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(*fiber.Ctx, error) error
}

// HandlerOption configures the handler wrappers.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics (requires WithPanicRecovery(true)).
func WithPanicHandler(h func(*fiber.Ctx, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(c *fiber.Ctx, v any) error {
			slog.Error("panic in handler", "panic", v)
			return internalError(c)
		},
		ContainerErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("failed to get container from context", "error", err)
			return internalError(c)
		},
		ResolutionErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("failed to resolve controller", "error", err)
			return internalError(c)
		},
	}
}

func handle[T any](
	opts []HandlerOption,
	resolve func(*injector.Container) (T, error),
	run func(*injector.Container, T, *fiber.Ctx) error,
) fiber.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *fiber.Ctx) (err error) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.PanicHandler(ctx, v)
				}
			}()
		}

		c := FromContext(ctx)
		if c == nil {
			return cfg.ContainerErrorHandler(ctx, injector.ErrNoContainer)
		}

		controller, resolveErr := resolve(c)
		if resolveErr != nil {
			return cfg.ResolutionErrorHandler(ctx, resolveErr)
		}

		return run(c, controller, ctx)
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// container. The class of T is resolved from the container stored by
// ContainerMiddleware.
//
// The method signature should be: func(T, *fiber.Ctx) error
//
// Example:
//
//	app.Get("/users/:id", injectorfiber.Handle((*UserController).GetByID))
func Handle[T any](method func(T, *fiber.Ctx) error, opts ...HandlerOption) fiber.Handler {
	return HandleKey(injector.Class[T](), method, opts...)
}

// HandleKey is like Handle but resolves the controller registered under key.
func HandleKey[T any](key any, method func(T, *fiber.Ctx) error, opts ...HandlerOption) fiber.Handler {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.Resolve[T](c, key)
		},
		func(_ *injector.Container, controller T, ctx *fiber.Ctx) error {
			return method(controller, ctx)
		},
	)
}

// Invoke resolves the class of T and calls its named method through
// Container.Call with the *fiber.Ctx as the only caller argument. The error
// of the call, including the method's own error result, is returned to
// Fiber unchanged. The method should not carry declarations.
func Invoke[T any](method string, opts ...HandlerOption) fiber.Handler {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.ResolveClass[T](c)
		},
		func(c *injector.Container, controller T, ctx *fiber.Ctx) error {
			_, err := c.Call(controller, method, ctx)
			return err
		},
	)
}

// FromContext retrieves the container stored by ContainerMiddleware.
// Returns nil if no container is present.
func FromContext(c *fiber.Ctx) *injector.Container {
	container, _ := c.Locals(containerKey).(*injector.Container)
	return container
}
