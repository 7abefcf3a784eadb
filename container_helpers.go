package injector

import (
	"fmt"
	"reflect"
)

// Resolve is a generic helper function that resolves key as type T.
func Resolve[T any](c *Container, key any, args ...any) (T, error) {
	var zero T

	if c == nil {
		return zero, ErrContainerNil
	}

	instance, err := c.Resolve(key, args...)
	if err != nil {
		return zero, err
	}

	return assertType[T](instance, "type assertion")
}

// ResolveClass resolves the class of T, registered or not.
func ResolveClass[T any](c *Container, args ...any) (T, error) {
	return Resolve[T](c, Class[T](), args...)
}

// MustResolve resolves key and panics on error.
func MustResolve[T any](c *Container, key any, args ...any) T {
	result, err := Resolve[T](c, key, args...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %v: %v", key, err))
	}
	return result
}

// MustResolveClass resolves the class of T and panics on error.
func MustResolveClass[T any](c *Container, args ...any) T {
	result, err := ResolveClass[T](c, args...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %v: %v", Class[T](), err))
	}
	return result
}

// RegisterClass registers the class of T under itself.
//
// Example:
//
//	injector.RegisterClass[*UserService](c, injector.AsSingleton())
func RegisterClass[T any](c *Container, opts ...RegisterOption) error {
	if c == nil {
		return ErrContainerNil
	}

	class := Class[T]()
	return c.Register(class, class, opts...)
}

// Invoke calls the named method of target and asserts its single result
// as type T.
func Invoke[T any](c *Container, target any, method string, args ...any) (T, error) {
	var zero T

	if c == nil {
		return zero, ErrContainerNil
	}

	result, err := c.Call(target, method, args...)
	if err != nil {
		return zero, err
	}

	return assertType[T](result, fmt.Sprintf("result of %s", method))
}

func assertType[T any](instance any, context string) (T, error) {
	var zero T

	// nil is a valid value of pointer and interface types.
	if instance == nil {
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return zero, nil
		}
	}

	result, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(instance),
			Context:  context,
		}
	}

	return result, nil
}
