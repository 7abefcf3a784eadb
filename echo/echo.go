// Package echo provides injector integration for the Echo web framework.
//
// This package provides middleware attaching a container to each request
// and type-safe handler wrappers for resolving controllers.
//
// Example usage:
//
//	c := injector.New()
//	injector.RegisterClass[*UserController](c, injector.AsSingleton())
//
//	e := echo.New()
//	e.Use(injectorecho.ContainerMiddleware(c))
//
//	e.GET("/users/:id", injectorecho.Handle((*UserController).GetByID))
//	e.POST("/users", injectorecho.Invoke[*UserController]("Create"))
package echo

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fcagreatgoals/injector"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(echo.Context, error) error

	// Middlewares are functions that run after the container is attached.
	Middlewares []func(*injector.Container, echo.Context) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for middleware failures.
func WithErrorHandler(h func(echo.Context, error) error) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function that runs after the container is
// attached. Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*injector.Container, echo.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		},
	}
}

// ContainerMiddleware creates an echo.MiddlewareFunc that attaches c to the
// request context, where it can be retrieved using injector.FromContext.
//
// Example:
//
//	e := echo.New()
//	e.Use(injectorecho.ContainerMiddleware(c))
func ContainerMiddleware(c *injector.Container, opts ...Option) echo.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.SetRequest(ctx.Request().WithContext(injector.NewContext(ctx.Request().Context(), c)))

			for _, mw := range cfg.Middlewares {
				if err := mw(c, ctx); err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			return next(ctx)
		}
	}
}

// HandlerConfig holds configuration for the handler wrappers.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(echo.Context, any) error

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(echo.Context, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(echo.Context, error) error
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
func WithPanicHandler(h func(echo.Context, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(echo.Context, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(echo.Context, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(c echo.Context, v any) error {
			slog.Error("panic in handler", "panic", v)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		},
		ContainerErrorHandler: func(c echo.Context, err error) error {
			slog.Error("failed to get container from context", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		},
		ResolutionErrorHandler: func(c echo.Context, err error) error {
			slog.Error("failed to resolve controller", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		},
	}
}

func handle[T any](
	opts []HandlerOption,
	resolve func(*injector.Container) (T, error),
	run func(*injector.Container, T, echo.Context) error,
) echo.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx echo.Context) (err error) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.PanicHandler(ctx, v)
				}
			}()
		}

		c, containerErr := injector.FromContext(ctx.Request().Context())
		if containerErr != nil {
			return cfg.ContainerErrorHandler(ctx, containerErr)
		}

		controller, resolveErr := resolve(c)
		if resolveErr != nil {
			return cfg.ResolutionErrorHandler(ctx, resolveErr)
		}

		return run(c, controller, ctx)
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// container. The class of T is resolved from the container attached to the
// request context.
//
// The method signature should be: func(T, echo.Context) error
//
// Example:
//
//	e.GET("/users/:id", injectorecho.Handle((*UserController).GetByID))
func Handle[T any](method func(T, echo.Context) error, opts ...HandlerOption) echo.HandlerFunc {
	return HandleKey(injector.Class[T](), method, opts...)
}

// HandleKey is like Handle but resolves the controller registered under key.
func HandleKey[T any](key any, method func(T, echo.Context) error, opts ...HandlerOption) echo.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.Resolve[T](c, key)
		},
		func(_ *injector.Container, controller T, ctx echo.Context) error {
			return method(controller, ctx)
		},
	)
}

// Invoke resolves the class of T and calls its named method through
// Container.Call with the echo.Context as the only caller argument. The
// error of the call, including the method's own error result, is returned
// to Echo unchanged. The method should not carry declarations.
func Invoke[T any](method string, opts ...HandlerOption) echo.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.ResolveClass[T](c)
		},
		func(c *injector.Container, controller T, ctx echo.Context) error {
			_, err := c.Call(controller, method, ctx)
			return err
		},
	)
}
