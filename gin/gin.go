// Package gin provides injector integration for the Gin web framework.
//
// This package provides middleware attaching a container to each request
// and type-safe handler wrappers for resolving controllers.
//
// Example usage:
//
//	c := injector.New()
//	injector.RegisterClass[*AuthController](c, injector.AsSingleton())
//
//	g := gin.New()
//	g.Use(injectorgin.ContainerMiddleware(c))
//
//	g.POST("/login", injectorgin.Handle((*AuthController).Login))
//	g.GET("/users/:id", injectorgin.Invoke[*UserController]("GetByID"))
package gin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcagreatgoals/injector"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(*gin.Context, error)

	// Middlewares are functions that run after the container is attached.
	// They can be used to initialize request context, set user claims, etc.
	Middlewares []func(*injector.Container, *gin.Context) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for middleware failures.
func WithErrorHandler(h func(*gin.Context, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function that runs after the container is
// attached. Multiple middlewares are executed in the order they are added.
//
// Example:
//
//	injectorgin.ContainerMiddleware(c,
//	    injectorgin.WithMiddleware(func(c *injector.Container, ctx *gin.Context) error {
//	        return c.Register("request.id", ctx.GetHeader("X-Request-ID"))
//	    }),
//	)
func WithMiddleware(mw func(*injector.Container, *gin.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(c *gin.Context, err error) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal Server Error",
			})
		},
	}
}

// ContainerMiddleware creates a gin.HandlerFunc that attaches c to the
// request context, where it can be retrieved using injector.FromContext.
//
// Example:
//
//	g := gin.New()
//	g.Use(injectorgin.ContainerMiddleware(c))
func ContainerMiddleware(c *injector.Container, opts ...Option) gin.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *gin.Context) {
		ctx.Request = ctx.Request.WithContext(injector.NewContext(ctx.Request.Context(), c))

		for _, mw := range cfg.Middlewares {
			if err := mw(c, ctx); err != nil {
				cfg.ErrorHandler(ctx, err)
				return
			}
		}

		ctx.Next()
	}
}

// HandlerConfig holds configuration for the handler wrappers.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*gin.Context, any)

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(*gin.Context, error)

	// ResolutionErrorHandler is called when the controller cannot be
	// resolved or its method cannot be invoked.
	ResolutionErrorHandler func(*gin.Context, error)
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
func WithPanicHandler(h func(*gin.Context, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func abort(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
	})
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(c *gin.Context, r any) {
			slog.Error("panic in handler", "panic", r)
			abort(c)
		},
		ContainerErrorHandler: func(c *gin.Context, err error) {
			slog.Error("failed to get container from context", "error", err)
			abort(c)
		},
		ResolutionErrorHandler: func(c *gin.Context, err error) {
			slog.Error("failed to resolve controller", "error", err)
			abort(c)
		},
	}
}

func handle[T any](
	opts []HandlerOption,
	resolve func(*injector.Container) (T, error),
	run func(*HandlerConfig, *injector.Container, T, *gin.Context),
) gin.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *gin.Context) {
		if cfg.PanicRecovery {
			defer func() {
				if r := recover(); r != nil {
					cfg.PanicHandler(ctx, r)
				}
			}()
		}

		c, err := injector.FromContext(ctx.Request.Context())
		if err != nil {
			cfg.ContainerErrorHandler(ctx, err)
			return
		}

		controller, err := resolve(c)
		if err != nil {
			cfg.ResolutionErrorHandler(ctx, err)
			return
		}

		run(cfg, c, controller, ctx)
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// container. The class of T is resolved from the container attached to the
// request context.
//
// The method signature should be: func(T, *gin.Context)
//
// Example:
//
//	g.GET("/users/:id", injectorgin.Handle((*UserController).GetByID))
func Handle[T any](method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	return HandleKey(injector.Class[T](), method, opts...)
}

// HandleKey is like Handle but resolves the controller registered under key.
func HandleKey[T any](key any, method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.Resolve[T](c, key)
		},
		func(_ *HandlerConfig, _ *injector.Container, controller T, ctx *gin.Context) {
			method(controller, ctx)
		},
	)
}

// Invoke resolves the class of T and calls its named method through
// Container.Call with the *gin.Context as the only caller argument. The
// method should not carry declarations.
func Invoke[T any](method string, opts ...HandlerOption) gin.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.ResolveClass[T](c)
		},
		func(cfg *HandlerConfig, c *injector.Container, controller T, ctx *gin.Context) {
			if _, err := c.Call(controller, method, ctx); err != nil {
				cfg.ResolutionErrorHandler(ctx, err)
			}
		},
	)
}
