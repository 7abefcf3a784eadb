package injector

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fcagreatgoals/injector/internal/reflection"
)

// PanicError indicates a method invoked through Call panicked.
type PanicError struct {
	Target reflect.Type
	Method string
	Panic  any
	Stack  []byte
}

func (e PanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s.%s panicked: %v\n", formatType(e.Target), e.Method, e.Panic))
	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}
	return b.String()
}

// Call invokes the named method of target with arguments built from the
// method's declarations on target's type. Without declarations args are
// passed through. An exported field holding a non-nil function can be
// called the same way.
//
// The result is nil for a method without results, the value for a single
// result, and a []any otherwise. A trailing error result is returned as the
// error.
func (c *Container) Call(target any, method string, args ...any) (any, error) {
	if target == nil {
		return nil, NotCallableError{Method: method, Reason: "target is nil"}
	}

	rv := reflect.ValueOf(target)
	t := rv.Type()

	fn, _, ok := c.invoker.Analyzer().Method(rv, method)
	if !ok {
		var err error
		if fn, err = funcField(rv, method); err != nil {
			return nil, err
		}
	}

	d := c.declarationFor(t)
	member := c.metadata.member(d, method)
	member.Owner = formatType(t)

	if !ok {
		// Declarations only apply to methods.
		member.Whole, member.Params = nil, nil
	}

	deps, err := c.builder(c.newResolution()).Arguments(member, args)
	if err != nil {
		return nil, err
	}

	out, err := c.invoker.Call(fn, deps)
	if err != nil {
		if pe, isPanic := err.(reflection.PanicError); isPanic {
			return nil, PanicError{Target: t, Method: method, Panic: pe.Value, Stack: pe.Stack}
		}
		return nil, invokeError(t, method, err, nil)
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}

// declarationFor finds the declarations of t, falling back to the element
// type of a pointer.
func (c *Container) declarationFor(t reflect.Type) *declaration {
	if d := c.metadata.lookup(t); d != nil {
		return d
	}
	if t.Kind() == reflect.Pointer {
		return c.metadata.lookup(t.Elem())
	}
	return nil
}

func funcField(rv reflect.Value, name string) (reflect.Value, error) {
	t := rv.Type()

	f, ok := reflection.Field(t, name)
	if !ok {
		return reflect.Value{}, NotCallableError{Target: t, Method: name, Reason: "no such method"}
	}

	if f.Type.Kind() != reflect.Func {
		return reflect.Value{}, NotCallableError{Target: t, Method: name, Reason: "field is not a function"}
	}

	sv := rv
	if sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return reflect.Value{}, NotCallableError{Target: t, Method: name, Reason: "target is a nil pointer"}
		}
		sv = sv.Elem()
	}

	fv := sv.FieldByIndex(f.Index)
	if fv.IsNil() {
		return reflect.Value{}, NotCallableError{Target: t, Method: name, Reason: "function field is nil"}
	}

	return fv, nil
}
