package injector

import (
	"bytes"
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/fcagreatgoals/injector/internal/graph"
	"github.com/fcagreatgoals/injector/internal/reflection"
)

// resolution tracks the keys being resolved by one top-level call.
type resolution struct {
	stack    []any
	maxDepth int
}

func (c *Container) newResolution() *resolution {
	return &resolution{maxDepth: c.maxDepth}
}

func (r *resolution) enter(key any) error {
	for i, k := range r.stack {
		if k == key {
			return CircularDependencyError{Key: key, Path: append([]any(nil), r.stack[i:]...)}
		}
	}

	if len(r.stack) >= r.maxDepth {
		return MaxDepthError{Key: key, Depth: r.maxDepth}
	}

	r.stack = append(r.stack, key)
	return nil
}

func (r *resolution) leave() {
	r.stack = r.stack[:len(r.stack)-1]
}

// Resolve returns the value registered under key.
//
// Resolution follows these rules in order:
//   - an unregistered ClassRef key is constructed ad hoc, without caching or hooks
//   - any other unregistered key fails with UnregisteredKeyError
//   - a registered value that is not a ClassRef is returned as is
//   - a lazy singleton is constructed on first resolution and cached
//   - a cached instance is returned
//   - a factory is called
//   - otherwise the class is constructed from its declared dependencies
//
// args are caller arguments for the construction, if one happens. Errors of
// nested resolutions are returned unwrapped.
func (c *Container) Resolve(key any, args ...any) (any, error) {
	return c.resolve(c.newResolution(), key, args)
}

func (c *Container) resolve(res *resolution, key any, args []any) (any, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	if err := res.enter(key); err != nil {
		return nil, err
	}
	defer res.leave()

	c.mu.RLock()
	reg, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		if class, isClass := key.(ClassRef); isClass {
			return c.instantiate(res, nil, class, args)
		}
		return nil, UnregisteredKeyError{Key: key, Available: c.Keys()}
	}

	class, isClass := reg.value.(ClassRef)
	if !isClass || class.IsZero() {
		return reg.value, nil
	}

	if reg.opts.IsLazy() {
		return c.resolveLazy(res, reg, class, args)
	}

	if inst, ok := reg.cached(); ok {
		return inst, nil
	}

	return c.create(res, reg, class, args)
}

// resolveLazy builds a lazy singleton at most once. A goroutine that asks
// for a registration it is already building, for instance from a factory
// resolving its own key, gets a CircularDependencyError.
func (c *Container) resolveLazy(res *resolution, reg *registration, class ClassRef, args []any) (any, error) {
	if inst, ok := reg.cached(); ok {
		return inst, nil
	}

	gid := goroutineID()
	if gid != 0 && reg.owner.Load() == gid {
		return nil, CircularDependencyError{Key: reg.key}
	}

	reg.build.Lock()
	defer reg.build.Unlock()

	if inst, ok := reg.cached(); ok {
		return inst, nil
	}

	reg.owner.Store(gid)
	defer reg.owner.Store(0)

	inst, err := c.create(res, reg, class, args)
	if err != nil {
		return nil, err
	}

	reg.store(inst)
	c.logger.Debug("lazy singleton created", "key", reg.key, "id", reg.id)

	return inst, nil
}

// goroutineID returns the id of the calling goroutine, parsed from the
// header of its stack trace ("goroutine 17 [running]:").
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// create builds one instance for reg, by its factory if it has one.
func (c *Container) create(res *resolution, reg *registration, class ClassRef, args []any) (any, error) {
	if reg.opts.Factory == nil {
		return c.instantiate(res, reg, class, args)
	}

	if hook := reg.opts.Hooks.OnCreate; hook != nil {
		hook(reg.value)
	}

	return callFactory(class, reg.opts.Factory)
}

func callFactory(class ClassRef, factory func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ConstructorPanicError{Constructor: reflect.TypeOf(factory), Panic: r, Stack: debug.Stack()}
		}
	}()

	v, err = factory()
	if err != nil {
		return nil, ConstructorError{Class: class, Cause: err}
	}

	return v, nil
}

// builder returns a dependency builder resolving within res.
func (c *Container) builder(res *resolution) *graph.Builder {
	return graph.NewBuilder(graph.ResolverFunc(func(key any) (any, error) {
		return c.resolve(res, key, nil)
	}))
}

// instantiate constructs class from its declarations. reg is nil for ad-hoc
// constructions, which run no hooks.
func (c *Container) instantiate(res *resolution, reg *registration, class ClassRef, args []any) (any, error) {
	t := class.Type()
	d := c.metadata.lookup(t)
	b := c.builder(res)

	member := c.metadata.member(d, constructorMember)
	member.Owner = formatType(t)

	deps, err := b.Arguments(member, args)
	if err != nil {
		return nil, err
	}

	if reg != nil {
		if hook := reg.opts.Hooks.OnCreate; hook != nil {
			hook(reg.value)
		}
	}

	inst, err := c.construct(class, d, deps)
	if err != nil {
		return nil, err
	}

	if d == nil || len(d.properties) == 0 {
		return inst.Interface(), nil
	}

	values, err := b.Properties(d.properties)
	if err != nil {
		return nil, err
	}

	target := inst
	if target.Kind() == reflect.Struct && !target.CanAddr() {
		target = reflect.New(inst.Type()).Elem()
		target.Set(inst)
	}

	for i, p := range d.properties {
		if err := reflection.SetField(target, p.Name, values[i]); err != nil {
			return nil, propertyError(t, p.Name, err)
		}
	}

	return target.Interface(), nil
}

// construct calls the declared constructor of class, or builds its zero
// value when none is declared.
func (c *Container) construct(class ClassRef, d *declaration, deps []any) (reflect.Value, error) {
	t := class.Type()

	if d == nil || !d.ctor.IsValid() {
		if len(deps) > 0 {
			return reflect.Value{}, ArgumentCountError{
				Owner:    formatType(t),
				Member:   constructorMember,
				Expected: 0,
				Supplied: len(deps),
			}
		}

		v, ok := reflection.Zero(t)
		if !ok {
			return reflect.Value{}, DeclarationError{
				Type:   t,
				Member: constructorMember,
				Reason: "no constructor declared and the type is not a struct",
			}
		}
		return v, nil
	}

	out, err := c.invoker.Call(d.ctor, deps)
	if err != nil {
		return reflect.Value{}, invokeError(t, constructorMember, err, func(cause error) error {
			return ConstructorError{Class: class, Cause: cause}
		})
	}

	v := reflect.ValueOf(out[0])
	if !v.IsValid() {
		// A nil interface result still has the declared type.
		v = reflect.Zero(t)
	}

	return v, nil
}

// invokeError translates invoker failures. Errors returned by the invoked
// function itself go through wrap.
func invokeError(owner reflect.Type, member string, err error, wrap func(error) error) error {
	switch e := err.(type) {
	case reflection.ArityError:
		return ArgumentCountError{
			Owner:    formatType(owner),
			Member:   member,
			Expected: e.Expected,
			Supplied: e.Got,
		}
	case reflection.ArgumentError:
		return TypeMismatchError{
			Expected: e.Expected,
			Actual:   e.Actual,
			Context:  fmt.Sprintf("argument %d of %s.%s", e.Index, formatType(owner), member),
		}
	case reflection.PanicError:
		return ConstructorPanicError{Constructor: e.Func, Panic: e.Value, Stack: e.Stack}
	default:
		if wrap == nil {
			return err
		}
		return wrap(err)
	}
}

func propertyError(owner reflect.Type, field string, err error) error {
	fe, ok := err.(reflection.FieldError)
	if !ok || fe.Expected == nil {
		return DeclarationError{Type: owner, Member: field, Reason: err.Error()}
	}

	return TypeMismatchError{
		Expected: fe.Expected,
		Actual:   fe.Actual,
		Context:  fmt.Sprintf("property %s.%s", formatType(owner), field),
	}
}
