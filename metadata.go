package injector

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fcagreatgoals/injector/internal/graph"
	"github.com/fcagreatgoals/injector/internal/reflection"
)

// constructorMember names the constructor in declarations. Go method names
// are exported identifiers, so it cannot collide with a method.
const constructorMember = "constructor"

// Metadata is a side table of dependency declarations keyed by type. It
// plays the role annotations play in languages that have them.
type Metadata struct {
	mu       sync.RWMutex
	decls    map[reflect.Type]*declaration
	analyzer *reflection.Analyzer
}

var defaultMetadata = NewMetadata()

// NewMetadata creates an empty declaration table.
func NewMetadata() *Metadata {
	return &Metadata{
		decls:    make(map[reflect.Type]*declaration),
		analyzer: reflection.New(),
	}
}

// DefaultMetadata returns the process-wide declaration table used by Declare
// and by containers created without WithMetadata.
func DefaultMetadata() *Metadata {
	return defaultMetadata
}

// declaration is immutable once stored; Declare replaces it with a copy.
type declaration struct {
	typ        reflect.Type
	ctor       reflect.Value
	ctorInfo   *reflection.FuncInfo
	members    map[string]*memberDecl
	properties []graph.Property
}

type memberDecl struct {
	whole      []reflect.Type
	params     map[int]any
	paramTypes []reflect.Type
}

func (d *declaration) clone() *declaration {
	c := &declaration{
		typ:        d.typ,
		ctor:       d.ctor,
		ctorInfo:   d.ctorInfo,
		members:    make(map[string]*memberDecl, len(d.members)),
		properties: append([]graph.Property(nil), d.properties...),
	}

	for name, md := range d.members {
		cm := &memberDecl{paramTypes: md.paramTypes}
		if md.whole != nil {
			cm.whole = append([]reflect.Type{}, md.whole...)
		}
		if md.params != nil {
			cm.params = make(map[int]any, len(md.params))
			for i, k := range md.params {
				cm.params[i] = k
			}
		}
		c.members[name] = cm
	}

	return c
}

// Declare records declarations for t. Options are applied in order; if one
// fails, none of them is recorded.
func (m *Metadata) Declare(t reflect.Type, opts ...DeclareOption) error {
	if t == nil {
		return DeclarationError{Reason: "type cannot be nil"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var d *declaration
	if existing, ok := m.decls[t]; ok {
		d = existing.clone()
	} else {
		d = &declaration{typ: t, members: make(map[string]*memberDecl)}
	}

	dc := &declarer{m: m, d: d}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDeclareOption(dc); err != nil {
			return err
		}
	}

	m.decls[t] = d
	return nil
}

// IsClass reports whether t counts as a class in dependency inference: it
// has a declaration or it is a pointer to a struct.
func (m *Metadata) IsClass(t reflect.Type) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isClassLocked(t)
}

func (m *Metadata) isClassLocked(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if _, ok := m.decls[t]; ok {
		return true
	}
	return reflection.IsStructPointer(t)
}

// Declared reports whether t has a declaration.
func (m *Metadata) Declared(t reflect.Type) bool {
	return m.lookup(t) != nil
}

// Reset removes every declaration.
func (m *Metadata) Reset() {
	m.mu.Lock()
	m.decls = make(map[reflect.Type]*declaration)
	m.mu.Unlock()
}

func (m *Metadata) lookup(t reflect.Type) *declaration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decls[t]
}

// member builds the graph view of a declared member. Whole-member slots are
// classified when the member is used, so types declared later still count.
func (m *Metadata) member(d *declaration, name string) graph.Member {
	gm := graph.Member{Name: name}
	if d == nil {
		return gm
	}
	gm.Owner = formatType(d.typ)

	md, ok := d.members[name]
	if !ok {
		return gm
	}

	gm.NumParams = len(md.paramTypes)
	if md.whole != nil {
		gm.Whole = make([]graph.Slot, len(md.whole))
		for i, pt := range md.whole {
			if m.IsClass(pt) {
				gm.Whole[i] = graph.Declared(ClassOf(pt))
			} else {
				gm.Whole[i] = graph.Caller()
			}
		}
	}
	if md.params != nil {
		gm.Params = md.params
	}

	return gm
}

// Declare records declarations for T in the default metadata table.
//
// Example:
//
//	injector.Declare[*UserService](
//	    injector.Constructor(NewUserService),
//	    injector.InjectConstructor(),
//	    injector.InjectProperty("Logger", "logger"),
//	)
func Declare[T any](opts ...DeclareOption) error {
	return defaultMetadata.Declare(reflect.TypeFor[T](), opts...)
}

// MustDeclare is like Declare but panics on error.
func MustDeclare[T any](opts ...DeclareOption) {
	if err := Declare[T](opts...); err != nil {
		panic(err)
	}
}

// A DeclareOption records one dependency declaration.
type DeclareOption interface {
	applyDeclareOption(*declarer) error
}

type declarer struct {
	m *Metadata
	d *declaration
}

type declareOptionFunc func(*declarer) error

func (f declareOptionFunc) applyDeclareOption(dc *declarer) error {
	return f(dc)
}

// isClass treats the type being declared as a class as well.
func (dc *declarer) isClass(t reflect.Type) bool {
	return t == dc.d.typ || dc.m.isClassLocked(t)
}

func (dc *declarer) fail(member, format string, args ...any) error {
	return DeclarationError{Type: dc.d.typ, Member: member, Reason: fmt.Sprintf(format, args...)}
}

// slotKey applies the key rules of a parameter or property of type t.
func (dc *declarer) slotKey(member, slot string, t reflect.Type, key any) (any, error) {
	class := dc.isClass(t)

	if key == nil {
		if !class {
			return nil, dc.fail(member, "%s of type %s is not a class and needs a key", slot, formatType(t))
		}
		return ClassOf(t), nil
	}

	if class {
		return nil, dc.fail(member, "%s of class type %s cannot take a key", slot, formatType(t))
	}

	if err := validateKey(key); err != nil {
		return nil, dc.fail(member, "%s: %v", slot, err)
	}

	return key, nil
}

// Constructor declares fn as the constructor of the type. fn must return a
// value assignable to the type, optionally followed by an error.
func Constructor(fn any) DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		if dc.d.ctor.IsValid() {
			return ConflictError{Owner: formatType(dc.d.typ), Member: constructorMember, Detail: "constructor declared twice"}
		}

		info, err := dc.m.analyzer.Analyze(fn)
		if err != nil {
			return dc.fail(constructorMember, "%v", err)
		}

		if info.Variadic {
			return dc.fail(constructorMember, "variadic constructors are not supported")
		}

		if len(info.Results) != 1 || !info.Results[0].AssignableTo(dc.d.typ) {
			return dc.fail(constructorMember, "%s must return %s or (%s, error)",
				formatType(info.Type), formatType(dc.d.typ), formatType(dc.d.typ))
		}

		dc.d.ctor = reflect.ValueOf(fn)
		dc.d.ctorInfo = info
		return nil
	})
}

func (dc *declarer) constructorParams() ([]reflect.Type, error) {
	if !dc.d.ctor.IsValid() {
		return nil, dc.fail(constructorMember, "no constructor declared")
	}
	return dc.d.ctorInfo.Params, nil
}

func (dc *declarer) methodParams(name string) ([]reflect.Type, error) {
	method, ok := dc.d.typ.MethodByName(name)
	if !ok {
		return nil, dc.fail(name, "no such method in the method set")
	}

	mt := method.Type
	params := make([]reflect.Type, 0, mt.NumIn())
	start := 1
	if dc.d.typ.Kind() == reflect.Interface {
		start = 0
	}
	for i := start; i < mt.NumIn(); i++ {
		params = append(params, mt.In(i))
	}

	if mt.IsVariadic() {
		return nil, dc.fail(name, "variadic methods cannot be declared")
	}

	return params, nil
}

func (dc *declarer) memberDecl(name string, params []reflect.Type) *memberDecl {
	md, ok := dc.d.members[name]
	if !ok {
		md = &memberDecl{paramTypes: params}
		dc.d.members[name] = md
	}
	return md
}

func (dc *declarer) injectWhole(name string, params []reflect.Type) error {
	md := dc.memberDecl(name, params)
	if md.params != nil {
		return ConflictError{
			Owner:  formatType(dc.d.typ),
			Member: name,
			Detail: "whole-member injection cannot be combined with parameter declarations",
		}
	}

	md.whole = append([]reflect.Type{}, params...)
	return nil
}

func (dc *declarer) injectParam(name string, params []reflect.Type, index int, key any) error {
	if index < 0 || index >= len(params) {
		return dc.fail(name, "parameter index %d out of range [0, %d)", index, len(params))
	}

	md := dc.memberDecl(name, params)
	if md.whole != nil {
		return ConflictError{
			Owner:  formatType(dc.d.typ),
			Member: name,
			Detail: "parameter declarations cannot be combined with whole-member injection",
		}
	}

	if _, ok := md.params[index]; ok {
		return ConflictError{Owner: formatType(dc.d.typ), Member: name, Detail: fmt.Sprintf("parameter %d declared twice", index)}
	}

	k, err := dc.slotKey(name, fmt.Sprintf("parameter %d", index), params[index], key)
	if err != nil {
		return err
	}

	if md.params == nil {
		md.params = make(map[int]any)
	}
	md.params[index] = k
	return nil
}

// InjectConstructor declares that every constructor parameter is injected:
// class-typed parameters are resolved, the others consume caller arguments.
func InjectConstructor() DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		params, err := dc.constructorParams()
		if err != nil {
			return err
		}
		return dc.injectWhole(constructorMember, params)
	})
}

// InjectParam declares the key of constructor parameter index. A nil key
// means the parameter's own class, which requires a class-typed parameter.
// Undeclared parameters resolve caller arguments as keys.
func InjectParam(index int, key any) DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		params, err := dc.constructorParams()
		if err != nil {
			return err
		}
		return dc.injectParam(constructorMember, params, index, key)
	})
}

// InjectMethod declares that every parameter of the named method is
// injected when the method is invoked through Container.Call.
func InjectMethod(name string) DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		params, err := dc.methodParams(name)
		if err != nil {
			return err
		}
		return dc.injectWhole(name, params)
	})
}

// InjectMethodParam declares the key of one parameter of the named method.
func InjectMethodParam(name string, index int, key any) DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		params, err := dc.methodParams(name)
		if err != nil {
			return err
		}
		return dc.injectParam(name, params, index, key)
	})
}

// InjectProperty declares that the exported field is assigned after
// construction. A nil key means the field's own class.
func InjectProperty(field string, key any) DeclareOption {
	return declareOptionFunc(func(dc *declarer) error {
		f, ok := reflection.Field(dc.d.typ, field)
		if !ok {
			return dc.fail(field, "no exported field with this name")
		}

		for _, p := range dc.d.properties {
			if p.Name == field {
				return ConflictError{Owner: formatType(dc.d.typ), Member: field, Detail: "property declared twice"}
			}
		}

		k, err := dc.slotKey(field, "property", f.Type, key)
		if err != nil {
			return err
		}

		dc.d.properties = append(dc.d.properties, graph.Property{Name: field, Key: k})
		return nil
	})
}
