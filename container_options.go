package injector

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxDepth is the default limit on nested resolutions.
const DefaultMaxDepth = 100

// ReplacePolicy controls what happens to the previous registration when a
// key is registered again.
type ReplacePolicy int

const (
	// ReplaceSilently drops the previous registration without running its
	// hooks.
	ReplaceSilently ReplacePolicy = iota

	// ReplaceUnregister unregisters the previous registration first, which
	// runs its destroy hook and closes its instance.
	ReplaceUnregister
)

func (p ReplacePolicy) String() string {
	switch p {
	case ReplaceSilently:
		return "silent"
	case ReplaceUnregister:
		return "unregister"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ReplacePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ReplacePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "silent", "":
		*p = ReplaceSilently
	case "unregister":
		*p = ReplaceUnregister
	default:
		return fmt.Errorf("invalid replace policy %q", string(text))
	}
	return nil
}

// An Option configures a Container.
type Option interface {
	applyOption(*Container)
}

type optionFunc func(*Container)

func (f optionFunc) applyOption(c *Container) {
	f(c)
}

// WithLogger sets the logger used for registry and resolution events.
// A nil logger discards records.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Container) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.logger = logger
	})
}

// WithMetadata sets the declaration table used to construct classes.
func WithMetadata(m *Metadata) Option {
	return optionFunc(func(c *Container) {
		if m != nil {
			c.metadata = m
		}
	})
}

// WithReplacePolicy sets the policy applied when a key is registered again.
func WithReplacePolicy(p ReplacePolicy) Option {
	return optionFunc(func(c *Container) {
		c.replace = p
	})
}

// WithMaxDepth sets the limit on nested resolutions. Values below one
// restore the default.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(c *Container) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}
		c.maxDepth = depth
	})
}

// WithID overrides the generated container identifier.
func WithID(id string) Option {
	return optionFunc(func(c *Container) {
		if id != "" {
			c.id = id
		}
	})
}
