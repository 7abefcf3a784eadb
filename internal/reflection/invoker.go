package reflection

import (
	"reflect"
	"runtime/debug"
)

// Invoker calls functions with loosely typed argument lists.
type Invoker struct {
	analyzer *Analyzer
}

// NewInvoker creates a new invoker.
func NewInvoker(analyzer *Analyzer) *Invoker {
	if analyzer == nil {
		analyzer = New()
	}
	return &Invoker{analyzer: analyzer}
}

// Analyzer returns the analyzer backing the invoker.
func (iv *Invoker) Analyzer() *Analyzer {
	return iv.analyzer
}

// Call invokes fn with args. Nil arguments become the zero value of their
// parameter. A trailing non-nil error result is returned as the error, and
// the remaining results are returned as values.
func (iv *Invoker) Call(fn reflect.Value, args []any) ([]any, error) {
	info, err := iv.analyzer.AnalyzeType(fn.Type())
	if err != nil {
		return nil, err
	}

	in, err := Arguments(info, args)
	if err != nil {
		return nil, err
	}

	out, err := call(fn, info, in)
	if err != nil {
		return nil, err
	}

	return split(info, out)
}

// Arguments converts args into call values for info.
func Arguments(info *FuncInfo, args []any) ([]reflect.Value, error) {
	n := info.NumParams()
	if info.Variadic {
		if len(args) < n-1 {
			return nil, ArityError{Expected: n - 1, Got: len(args), Variadic: true}
		}
	} else if len(args) != n {
		return nil, ArityError{Expected: n, Got: len(args)}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := paramType(info, i)

		v, ok := assign(arg, pt)
		if !ok {
			return nil, ArgumentError{Index: i, Expected: pt, Actual: reflect.TypeOf(arg)}
		}
		in[i] = v
	}

	return in, nil
}

func paramType(info *FuncInfo, i int) reflect.Type {
	last := info.NumParams() - 1
	if info.Variadic && i >= last {
		return info.Params[last].Elem()
	}
	return info.Params[i]
}

// assign converts arg to a value of type t.
func assign(arg any, t reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		return reflect.Zero(t), true
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, true
	}

	return reflect.Value{}, false
}

func call(fn reflect.Value, info *FuncInfo, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Func: info.Type, Value: r, Stack: debug.Stack()}
		}
	}()

	return fn.Call(in), nil
}

func split(info *FuncInfo, out []reflect.Value) ([]any, error) {
	if info.HasErrorReturn {
		last := out[len(out)-1]
		out = out[:len(out)-1]

		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}

	return values, nil
}
