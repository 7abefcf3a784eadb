// Package chi provides injector integration for the Chi router.
//
// This package provides middleware attaching a container to each request
// and type-safe handler wrappers for resolving controllers.
//
// Example usage:
//
//	c := injector.New()
//	injector.RegisterClass[*UserController](c, injector.AsSingleton())
//
//	r := chi.NewRouter()
//	r.Use(injectorchi.ContainerMiddleware(c))
//
//	r.Get("/users/{id}", injectorchi.Handle((*UserController).GetByID))
//	r.Post("/users", injectorchi.Invoke[*UserController]("Create"))
package chi

import (
	"log/slog"
	"net/http"

	"github.com/fcagreatgoals/injector"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares are functions that run after the container is attached.
	// They can be used to validate the request, set user data, etc.
	Middlewares []func(*injector.Container, *http.Request) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for middleware failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function that runs after the container is
// attached. Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*injector.Container, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// ContainerMiddleware creates a Chi middleware that attaches c to the
// request context, where it can be retrieved using injector.FromContext.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(injectorchi.ContainerMiddleware(c))
func ContainerMiddleware(c *injector.Container, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(injector.NewContext(r.Context(), c))

			for _, mw := range cfg.Middlewares {
				if err := mw(c, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerConfig holds configuration for the handler wrappers.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be
	// resolved or its method cannot be invoked.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// HandlerOption configures the handler wrappers.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(w http.ResponseWriter, r *http.Request, v any) {
			slog.Error("panic in handler", "panic", v)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ContainerErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to get container from context", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ResolutionErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to resolve controller", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

func handle[T any](
	opts []HandlerOption,
	resolve func(*injector.Container) (T, error),
	run func(*HandlerConfig, *injector.Container, T, http.ResponseWriter, *http.Request),
) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		c, err := injector.FromContext(r.Context())
		if err != nil {
			cfg.ContainerErrorHandler(w, r, err)
			return
		}

		controller, err := resolve(c)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		run(cfg, c, controller, w, r)
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// container. The class of T is resolved from the container attached to the
// request context.
//
// The method signature should be: func(T, http.ResponseWriter, *http.Request)
//
// Example:
//
//	r.Get("/users/{id}", injectorchi.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	return HandleKey(injector.Class[T](), method, opts...)
}

// HandleKey is like Handle but resolves the controller registered under key.
func HandleKey[T any](key any, method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.Resolve[T](c, key)
		},
		func(_ *HandlerConfig, _ *injector.Container, controller T, w http.ResponseWriter, r *http.Request) {
			method(controller, w, r)
		},
	)
}

// Invoke resolves the class of T and calls its named method through
// Container.Call, with the response writer and request as caller arguments.
// The method should not carry declarations, since *http.Request would then
// be resolved as a class; controllers receive their dependencies through
// declared properties instead.
//
// Example:
//
//	r.Post("/users", injectorchi.Invoke[*UserController]("Create"))
func Invoke[T any](method string, opts ...HandlerOption) http.HandlerFunc {
	return handle(opts,
		func(c *injector.Container) (T, error) {
			return injector.ResolveClass[T](c)
		},
		func(cfg *HandlerConfig, c *injector.Container, controller T, w http.ResponseWriter, r *http.Request) {
			if _, err := c.Call(controller, method, w, r); err != nil {
				cfg.ResolutionErrorHandler(w, r, err)
			}
		},
	)
}
