package injector

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fcagreatgoals/injector/internal/reflection"
)

// Container is a registry of keys mapped to values, classes and factories.
// It is safe for concurrent use.
type Container struct {
	id       string
	logger   *slog.Logger
	metadata *Metadata
	replace  ReplacePolicy
	maxDepth int
	invoker  *reflection.Invoker

	mu      sync.RWMutex
	entries map[any]*registration
	order   []any
}

// registration is one entry of the registry.
type registration struct {
	id    string
	key   any
	value any
	opts  Options

	// build serializes lazy construction. owner holds the id of the
	// goroutine running it, zero when idle.
	build sync.Mutex
	owner atomic.Uint64

	// mu guards the cached instance only; it is never held while user code
	// runs.
	mu          sync.Mutex
	instance    any
	hasInstance bool
}

func (r *registration) cached() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instance, r.hasInstance
}

func (r *registration) store(inst any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instance, r.hasInstance = inst, true
}

// hookValue is what lifecycle hooks receive: the instance if one is cached,
// the registered value otherwise.
func (r *registration) hookValue() any {
	if inst, ok := r.cached(); ok {
		return inst
	}
	return r.value
}

// RegistrationInfo is a read-only view of a registration.
type RegistrationInfo struct {
	Key         any      `json:"key"`
	ID          string   `json:"id"`
	Lifetime    Lifetime `json:"lifetime"`
	IsClass     bool     `json:"isClass"`
	HasFactory  bool     `json:"hasFactory"`
	HasInstance bool     `json:"hasInstance"`
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:       uuid.NewString(),
		logger:   slog.New(slog.DiscardHandler),
		metadata: defaultMetadata,
		maxDepth: DefaultMaxDepth,
		entries:  make(map[any]*registration),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyOption(c)
	}

	c.invoker = reflection.NewInvoker(c.metadata.analyzer)
	c.logger = c.logger.With("container", c.id)

	return c
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id
}

// Metadata returns the declaration table the container constructs classes
// with.
func (c *Container) Metadata() *Metadata {
	return c.metadata
}

// Register maps key to value.
//
// A ClassRef value is constructed on resolution, by the Factory option if
// one is given and from its declared dependencies otherwise. Any other
// value is returned as is. Eager singletons (AsSingleton with Lazy(false))
// are constructed before Register returns, with the Args option as caller
// arguments; a construction failure leaves the registry untouched.
//
// Registering an existing key replaces its registration according to the
// container's ReplacePolicy.
func (c *Container) Register(key, value any, opts ...RegisterOption) error {
	if err := validateKey(key); err != nil {
		return err
	}

	o := newOptions(opts)
	if err := o.check(); err != nil {
		if oe, ok := err.(OptionsError); ok {
			oe.Key = key
			return oe
		}
		return err
	}

	if o.Validate != nil && !o.Validate(value) {
		return ValidationError{Key: key, Value: value}
	}

	reg := &registration{
		id:    uuid.NewString(),
		key:   key,
		value: value,
		opts:  *o,
	}

	if class, ok := value.(ClassRef); ok && !class.IsZero() && o.Singleton && !o.IsLazy() {
		res := c.newResolution()
		if err := res.enter(key); err != nil {
			return err
		}

		inst, err := c.create(res, reg, class, o.Args)
		res.leave()
		if err != nil {
			return err
		}

		reg.store(inst)
		c.logger.Debug("singleton created", "key", key, "id", reg.id)
	}

	c.mu.Lock()
	old, replaced := c.entries[key]
	c.entries[key] = reg
	if !replaced {
		c.order = append(c.order, key)
	}
	c.mu.Unlock()

	c.logger.Debug("registered", "key", key, "id", reg.id, "lifetime", o.Lifetime(), "replaced", replaced)

	if replaced && c.replace == ReplaceUnregister {
		return c.retire(context.Background(), old, "replace", false)
	}

	return nil
}

// Unregister removes the registration of key, running its destroy hook
// first. The cached instance is closed after removal if it is Disposable;
// a close failure is returned as a DisposalError. Unknown keys are ignored.
func (c *Container) Unregister(key any) error {
	return c.unregister(context.Background(), key, "unregister")
}

// Destroy unregisters every key in registration order.
func (c *Container) Destroy() error {
	return c.Shutdown(context.Background())
}

// Shutdown is like Destroy and passes ctx to instances implementing
// DisposableWithContext.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	for _, key := range c.Keys() {
		if err := c.unregister(ctx, key, "destroy"); err != nil {
			if de, ok := err.(DisposalError); ok {
				errs = append(errs, de.Errors...)
				continue
			}
			errs = append(errs, err)
		}
	}

	c.logger.Debug("destroyed", "errors", len(errs))

	if len(errs) > 0 {
		return DisposalError{Context: "destroy", Errors: errs}
	}
	return nil
}

func (c *Container) unregister(ctx context.Context, key any, phase string) error {
	if validateKey(key) != nil {
		return nil
	}

	c.mu.RLock()
	reg, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	return c.retire(ctx, reg, phase, true)
}

// retire runs the destroy hook of reg, removes it from the registry if
// remove is set and it is still current, then closes its instance.
func (c *Container) retire(ctx context.Context, reg *registration, phase string, remove bool) error {
	if hook := reg.opts.Hooks.OnDestroy; hook != nil {
		hook(reg.hookValue())
	}

	if remove {
		c.mu.Lock()
		if c.entries[reg.key] == reg {
			delete(c.entries, reg.key)
			for i, k := range c.order {
				if k == reg.key {
					c.order = append(c.order[:i:i], c.order[i+1:]...)
					break
				}
			}
		}
		c.mu.Unlock()
	}

	c.logger.Debug("unregistered", "key", reg.key, "id", reg.id, "phase", phase)

	inst, ok := reg.cached()
	if !ok {
		return nil
	}

	if err := closeInstance(ctx, inst); err != nil {
		c.logger.Debug("close failed", "key", reg.key, "error", err)
		return DisposalError{Context: phase, Errors: []error{err}}
	}

	return nil
}

// Has reports whether key is registered.
func (c *Container) Has(key any) bool {
	if validateKey(key) != nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Keys returns the registered keys in registration order.
func (c *Container) Keys() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]any(nil), c.order...)
}

// Len returns the number of registrations.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Inspect returns a view of the registration of key.
func (c *Container) Inspect(key any) (RegistrationInfo, bool) {
	if validateKey(key) != nil {
		return RegistrationInfo{}, false
	}

	c.mu.RLock()
	reg, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return RegistrationInfo{}, false
	}

	_, hasInstance := reg.cached()
	return RegistrationInfo{
		Key:         key,
		ID:          reg.id,
		Lifetime:    reg.opts.Lifetime(),
		IsClass:     IsClass(reg.value),
		HasFactory:  reg.opts.Factory != nil,
		HasInstance: hasInstance,
	}, true
}
