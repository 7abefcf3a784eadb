package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConflictingDeclaration = errors.New("conflicting dependency declaration")
	ErrArgumentCountMismatch  = errors.New("argument count mismatch")
	ErrCircularDependency     = errors.New("circular dependency detected")
)

// ConflictError reports a member that carries both a whole-member dependency
// list and per-parameter declarations, or a slot declared twice.
type ConflictError struct {
	Owner  string
	Member string
	Detail string
}

func (e ConflictError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("conflicting dependency declaration on %s.%s", e.Owner, e.Member)
	}
	return fmt.Sprintf("conflicting dependency declaration on %s.%s: %s", e.Owner, e.Member, e.Detail)
}

func (e ConflictError) Is(target error) bool {
	return target == ErrConflictingDeclaration
}

// ArgumentCountError reports that declared dependencies plus caller arguments
// do not add up to the parameter count of the member.
type ArgumentCountError struct {
	Owner    string
	Member   string
	Expected int
	Declared int
	Supplied int
}

func (e ArgumentCountError) Error() string {
	return fmt.Sprintf("%s.%s takes %d parameters but got %d declared dependencies and %d arguments",
		e.Owner, e.Member, e.Expected, e.Declared, e.Supplied)
}

func (e ArgumentCountError) Is(target error) bool {
	return target == ErrArgumentCountMismatch
}

// CircularDependencyError represents a key that was requested again while it
// was still being resolved.
type CircularDependencyError struct {
	Key  any
	Path []any
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		b.WriteString(fmt.Sprintf("    %v\n", e.Key))
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %v (cycle)\n", e.Key))
	} else {
		for i, key := range e.Path {
			b.WriteString(fmt.Sprintf("    %v\n", key))
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %v (cycle)\n", e.Key))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Register one side with a factory that resolves the other lazily\n")
	b.WriteString("  • Move one dependency to a property or method injection\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}
