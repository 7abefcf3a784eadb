// Package graph turns declared dependency metadata into positional argument
// lists, resolving every declared slot through a Resolver.
package graph

// Slot is one position of a whole-member dependency list.
type Slot struct {
	// Key is resolved when FromCaller is false.
	Key any

	// FromCaller slots consume the next caller-supplied argument as is.
	FromCaller bool
}

// Declared returns a slot that resolves key.
func Declared(key any) Slot {
	return Slot{Key: key}
}

// Caller returns a slot filled by the next caller argument.
func Caller() Slot {
	return Slot{FromCaller: true}
}

// Member describes the declared dependencies of a constructor or a method.
// Whole and Params are mutually exclusive; a nil value means "not declared".
type Member struct {
	Owner string
	Name  string

	// Whole is the ordered whole-member dependency list.
	Whole []Slot

	// Params maps parameter positions to keys.
	Params map[int]any

	// NumParams is the parameter count of the member.
	NumParams int
}

// Declared reports whether any dependency metadata exists for the member.
func (m Member) Declared() bool {
	return m.Whole != nil || m.Params != nil
}

// Property is an injectable field and the key it is resolved from.
type Property struct {
	Name string
	Key  any
}

// Resolver resolves a single key. Errors are returned to the caller of the
// builder untouched.
type Resolver interface {
	Resolve(key any) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key any) (any, error)

func (f ResolverFunc) Resolve(key any) (any, error) {
	return f(key)
}

// Builder produces argument lists and property values for members.
type Builder struct {
	resolver Resolver
}

// NewBuilder creates a builder resolving through r.
func NewBuilder(r Resolver) *Builder {
	if r == nil {
		panic("graph: resolver cannot be nil")
	}

	return &Builder{resolver: r}
}

// Arguments builds the positional argument list of m. Caller arguments are
// consumed left to right; when nothing is declared they are passed through.
func (b *Builder) Arguments(m Member, args []any) ([]any, error) {
	if m.Whole != nil && m.Params != nil {
		return nil, ConflictError{
			Owner:  m.Owner,
			Member: m.Name,
			Detail: "whole-member list and per-parameter declarations are both present",
		}
	}

	remaining := args
	next := func() any {
		if len(remaining) == 0 {
			return nil
		}
		v := remaining[0]
		remaining = remaining[1:]
		return v
	}

	switch {
	case m.Whole != nil:
		deps := make([]any, 0, len(m.Whole))
		for _, slot := range m.Whole {
			if slot.FromCaller {
				deps = append(deps, next())
				continue
			}

			v, err := b.resolver.Resolve(slot.Key)
			if err != nil {
				return nil, err
			}
			deps = append(deps, v)
		}
		return deps, nil

	case m.Params != nil:
		if len(m.Params)+len(remaining) != m.NumParams {
			return nil, ArgumentCountError{
				Owner:    m.Owner,
				Member:   m.Name,
				Expected: m.NumParams,
				Declared: len(m.Params),
				Supplied: len(remaining),
			}
		}

		deps := make([]any, 0, m.NumParams)
		for i := 0; i < m.NumParams; i++ {
			key, ok := m.Params[i]
			if !ok {
				// Positional caller arguments name keys here.
				key = next()
			}

			v, err := b.resolver.Resolve(key)
			if err != nil {
				return nil, err
			}
			deps = append(deps, v)
		}
		return deps, nil

	default:
		return append([]any(nil), args...), nil
	}
}

// Properties resolves every property in declaration order.
func (b *Builder) Properties(props []Property) ([]any, error) {
	values := make([]any, 0, len(props))
	for _, p := range props {
		v, err := b.resolver.Resolve(p.Key)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, nil
}
