package injector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fcagreatgoals/injector/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below match these through errors.Is.

var (
	// Registration errors.
	ErrInvalidOptions   = errors.New("invalid registration options")
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidKey       = errors.New("invalid key")

	// Resolution errors.
	ErrUnregisteredKey       = errors.New("no registration found")
	ErrNotCallable           = errors.New("not callable")
	ErrArgumentCountMismatch = graph.ErrArgumentCountMismatch
	ErrCircularDependency    = graph.ErrCircularDependency

	// Declaration errors.
	ErrInvalidDeclaration     = errors.New("invalid dependency declaration")
	ErrConflictingDeclaration = graph.ErrConflictingDeclaration

	// Container errors.
	ErrContainerNil = errors.New("container cannot be nil")
	ErrNoContainer  = errors.New("no container in context")
)

var (
	_ error = OptionsError{}
	_ error = ValidationError{}
	_ error = KeyError{}
	_ error = UnregisteredKeyError{}
	_ error = NotCallableError{}
	_ error = DeclarationError{}
	_ error = MaxDepthError{}
	_ error = TypeMismatchError{}
	_ error = ConstructorError{}
	_ error = ConstructorPanicError{}
	_ error = DisposalError{}
	_ error = ModuleError{}
	_ error = LifetimeError{}
	_ error = ConflictError{}
	_ error = ArgumentCountError{}
	_ error = CircularDependencyError{}
)

// Type aliases for graph package types.
type (
	ConflictError           = graph.ConflictError
	ArgumentCountError      = graph.ArgumentCountError
	CircularDependencyError = graph.CircularDependencyError
)

// OptionsError indicates malformed registration options.
type OptionsError struct {
	Key    any
	Field  string
	Reason string
}

func (e OptionsError) Error() string {
	return fmt.Sprintf("invalid options for %v: %s %s", e.Key, e.Field, e.Reason)
}

func (e OptionsError) Is(target error) bool {
	return target == ErrInvalidOptions
}

// ValidationError indicates that a registration validator rejected its value.
type ValidationError struct {
	Key   any
	Value any
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %v: %v", e.Key, e.Value)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// KeyError indicates a key that cannot be used in the registry.
type KeyError struct {
	Key    any
	Reason string
}

func (e KeyError) Error() string {
	return fmt.Sprintf("invalid key %v: %s", e.Key, e.Reason)
}

func (e KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// UnregisteredKeyError indicates a resolution of a key that has no
// registration and is not a class.
type UnregisteredKeyError struct {
	Key       any
	Available []any // Registered keys, used for suggestions
}

func (e UnregisteredKeyError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("no registration found for key: %v", e.Key))

	if similar := findSimilarKeys(e.Key, e.Available); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, k := range similar {
			b.WriteString(fmt.Sprintf("  • %v\n", k))
		}
	}

	return b.String()
}

func (e UnregisteredKeyError) Is(target error) bool {
	return target == ErrUnregisteredKey
}

// findSimilarKeys finds keys whose printed form contains, or is contained
// in, the printed form of target.
func findSimilarKeys(target any, available []any) []any {
	if target == nil || len(available) == 0 {
		return nil
	}

	name := strings.ToLower(fmt.Sprint(target))

	var similar []any
	for _, k := range available {
		candidate := strings.ToLower(fmt.Sprint(k))
		if candidate == name {
			continue
		}

		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			similar = append(similar, k)
		}

		// Limit suggestions
		if len(similar) >= 5 {
			break
		}
	}

	return similar
}

// NotCallableError indicates that Call was given a target or member that
// cannot be invoked.
type NotCallableError struct {
	Target reflect.Type
	Method string
	Reason string
}

func (e NotCallableError) Error() string {
	if e.Target == nil {
		return fmt.Sprintf("cannot call %q: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("cannot call %s.%s: %s", formatType(e.Target), e.Method, e.Reason)
}

func (e NotCallableError) Is(target error) bool {
	return target == ErrNotCallable
}

// DeclarationError indicates a dependency declaration that cannot be honored.
type DeclarationError struct {
	Type   reflect.Type
	Member string
	Reason string
}

func (e DeclarationError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("invalid dependency declaration for %s: %s", formatType(e.Type), e.Reason)
	}
	return fmt.Sprintf("invalid dependency declaration for %s.%s: %s", formatType(e.Type), e.Member, e.Reason)
}

func (e DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

// MaxDepthError indicates that a resolution chain grew beyond the configured
// maximum depth.
type MaxDepthError struct {
	Key   any
	Depth int
}

func (e MaxDepthError) Error() string {
	return fmt.Sprintf("maximum resolution depth %d exceeded while resolving %v", e.Depth, e.Key)
}

// TypeMismatchError indicates a type assertion or assignment failed.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "type assertion", "argument 0 of NewService", etc.
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// ConstructorError wraps an error returned by a declared constructor or a
// registration factory.
type ConstructorError struct {
	Class ClassRef
	Cause error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("failed to construct %v: %v", e.Class, e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor %s panicked: %v\n", formatType(e.Constructor), e.Panic))

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Check for nil pointer dereferences in your constructor\n")
	b.WriteString("  • Add nil checks for dependencies the caller may omit\n")

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// DisposalError aggregates disposal errors.
type DisposalError struct {
	Context string // "unregister", "destroy", "replace"
	Errors  []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s disposal failed: %v", e.Context, e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s disposal failed with %d errors:", e.Context, len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// ModuleError wraps errors from module installation.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		// Format pointers as *Type instead of *package.Type
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
