package layering

import (
	"fmt"
	"slices"
	"strings"
)

// Level identifies the source a value was taken from. Higher levels override
// lower levels when layering.
type Level int

const (
	// LevelNone marks a key no layer supplied.
	LevelNone Level = iota
	// LevelDefault represents the weakest layer (declared defaults).
	LevelDefault
	// LevelEnv represents values read from the environment snapshot.
	LevelEnv
	// LevelArgs represents the strongest layer, values scanned from tokens.
	LevelArgs
)

func (l Level) String() string {
	switch l {
	case LevelDefault:
		return "default"
	case LevelEnv:
		return "env"
	case LevelArgs:
		return "args"
	default:
		return "none"
	}
}

// ParseLevel converts a string representation into the corresponding Level.
// Unrecognised values map to LevelNone.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "default", "defaults":
		return LevelDefault
	case "env", "environment":
		return LevelEnv
	case "args", "argv", "cli":
		return LevelArgs
	default:
		return LevelNone
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name. "none" is accepted explicitly; any
// other unknown name is an error.
func (l *Level) UnmarshalText(text []byte) error {
	parsed := ParseLevel(string(text))
	if parsed == LevelNone && strings.TrimSpace(string(text)) != "none" {
		return fmt.Errorf("layering: unknown level %q", string(text))
	}
	*l = parsed
	return nil
}

// Layer pairs a level with the values it contributes.
type Layer[V any] struct {
	Level  Level
	Values map[string]V
}

// Ordered returns layers sorted strongest first. Layers at LevelNone are
// dropped; peers keep their relative order.
func Ordered[V any](layers ...Layer[V]) []Layer[V] {
	out := make([]Layer[V], 0, len(layers))
	for _, layer := range layers {
		if layer.Level == LevelNone {
			continue
		}
		out = append(out, layer)
	}
	slices.SortStableFunc(out, func(a, b Layer[V]) int {
		switch {
		case a.Level == b.Level:
			return 0
		case a.Level > b.Level:
			return -1
		default:
			return 1
		}
	})
	return out
}
