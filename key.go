package injector

import "reflect"

// ClassRef identifies a constructible Go type. It is both a registrable value
// and a key: registering Class[T]() under Class[T]() is self-registration.
//
// A type is constructible when it has a declaration in the container's
// metadata, or when it is a struct or a pointer to a struct.
type ClassRef struct {
	t reflect.Type
}

// Class returns the class reference of T.
func Class[T any]() ClassRef {
	return ClassRef{t: reflect.TypeFor[T]()}
}

// ClassOf returns the class reference of t.
func ClassOf(t reflect.Type) ClassRef {
	return ClassRef{t: t}
}

// Type returns the referenced type.
func (c ClassRef) Type() reflect.Type {
	return c.t
}

// IsZero reports whether c references no type.
func (c ClassRef) IsZero() bool {
	return c.t == nil
}

func (c ClassRef) String() string {
	return formatType(c.t)
}

// IsClass reports whether v is a non-zero class reference.
func IsClass(v any) bool {
	c, ok := v.(ClassRef)
	return ok && !c.IsZero()
}

// validateKey rejects keys that cannot index the registry.
func validateKey(key any) error {
	if key == nil {
		return KeyError{Key: key, Reason: "key cannot be nil"}
	}

	if c, ok := key.(ClassRef); ok && c.IsZero() {
		return KeyError{Key: key, Reason: "class reference has no type"}
	}

	if !reflect.ValueOf(key).Comparable() {
		return KeyError{Key: key, Reason: "key must be comparable"}
	}

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c ClassRef) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
