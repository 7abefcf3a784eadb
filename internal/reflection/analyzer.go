package reflection

import (
	"fmt"
	"reflect"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Analyzer performs reflection-based analysis of function signatures.
// It caches analysis results per function type.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*FuncInfo
}

// FuncInfo contains analyzed information about a constructor or a bound method.
type FuncInfo struct {
	Type           reflect.Type
	Params         []reflect.Type
	Results        []reflect.Type // Non-error results, in order
	HasErrorReturn bool           // Returns error as last value
	Variadic       bool
}

// NumParams returns the declared parameter count.
func (f *FuncInfo) NumParams() int {
	return len(f.Params)
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[reflect.Type]*FuncInfo),
	}
}

// Analyze analyzes a function value.
func (a *Analyzer) Analyze(fn any) (*FuncInfo, error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %T", fn)
	}

	if val.IsNil() {
		return nil, fmt.Errorf("function cannot be nil")
	}

	return a.AnalyzeType(val.Type())
}

// AnalyzeType analyzes a function type.
func (a *Analyzer) AnalyzeType(t reflect.Type) (*FuncInfo, error) {
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function type, got %v", t)
	}

	a.mu.RLock()
	if cached, ok := a.cache[t]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	info := &FuncInfo{
		Type:     t,
		Params:   make([]reflect.Type, t.NumIn()),
		Variadic: t.IsVariadic(),
	}

	for i := 0; i < t.NumIn(); i++ {
		info.Params[i] = t.In(i)
	}

	info.Results = make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		out := t.Out(i)

		// Only a trailing error is treated as the error channel
		if i == t.NumOut()-1 && out == errType {
			info.HasErrorReturn = true
			continue
		}

		info.Results = append(info.Results, out)
	}

	a.mu.Lock()
	a.cache[t] = info
	a.mu.Unlock()

	return info, nil
}

// Method returns the method called name bound to v, with its analysis. The second
// return is false when v has no such exported method.
func (a *Analyzer) Method(v reflect.Value, name string) (reflect.Value, *FuncInfo, bool) {
	if !v.IsValid() || name == "" {
		return reflect.Value{}, nil, false
	}

	m := v.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, nil, false
	}

	info, err := a.AnalyzeType(m.Type())
	if err != nil {
		return reflect.Value{}, nil, false
	}

	return m, info, true
}

// Clear clears the analysis cache.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	a.cache = make(map[reflect.Type]*FuncInfo)
	a.mu.Unlock()
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// IsStructPointer reports whether t is a pointer to a struct.
func IsStructPointer(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}

// StructType returns the struct type behind t, dereferencing one pointer.
func StructType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, false
	}

	return t, true
}

// Zero builds the zero-value instance of t: a fresh pointer for pointers to
// structs, an addressable value for structs.
func Zero(t reflect.Type) (reflect.Value, bool) {
	switch {
	case IsStructPointer(t):
		return reflect.New(t.Elem()), true
	case t != nil && t.Kind() == reflect.Struct:
		return reflect.New(t).Elem(), true
	default:
		return reflect.Value{}, false
	}
}
