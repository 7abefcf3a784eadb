package reflection

import (
	"fmt"
	"reflect"
)

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Expected int
	Got      int
	Variadic bool
}

func (e ArityError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("expected at least %d arguments, got %d", e.Expected, e.Got)
	}
	return fmt.Sprintf("expected %d arguments, got %d", e.Expected, e.Got)
}

// ArgumentError reports an argument that cannot be assigned to its parameter.
type ArgumentError struct {
	Index    int
	Expected reflect.Type
	Actual   reflect.Type
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("argument %d: cannot use %v as %v", e.Index, e.Actual, e.Expected)
}

// FieldError reports a property that cannot be assigned.
type FieldError struct {
	Struct   reflect.Type
	Field    string
	Expected reflect.Type // nil when the field does not exist
	Actual   reflect.Type
}

func (e FieldError) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("%v has no settable field %q", e.Struct, e.Field)
	}
	return fmt.Sprintf("field %v.%s: cannot use %v as %v", e.Struct, e.Field, e.Actual, e.Expected)
}

// PanicError captures a panic raised by an invoked function.
type PanicError struct {
	Func  reflect.Type
	Value any
	Stack []byte
}

func (e PanicError) Error() string {
	return fmt.Sprintf("%v panicked: %v", e.Func, e.Value)
}
