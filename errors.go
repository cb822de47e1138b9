package cliparser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotParsed is returned when results are inspected before any scan ran.
var ErrNotParsed = errors.New("cliparser: registry has not been parsed")

const (
	// KeyDuplicatePositional keys the error raised when more than one option
	// uses positional mode.
	KeyDuplicatePositional = "duplicate-positional"
	// KeyDuplicateSeparator keys the error raised when more than one option
	// uses separator mode.
	KeyDuplicateSeparator = "duplicate-separator"
	// KeyUnnamed keys definition errors for options registered without a name.
	KeyUnnamed = "<unnamed>"
	// KeyUnknownPrefix prefixes the key of an unmatched token so it cannot
	// collide with an option name.
	KeyUnknownPrefix = "unknown:"
)

// UnknownTokenKey returns the error map key used for an unmatched token.
func UnknownTokenKey(token string) string {
	return KeyUnknownPrefix + token
}

// ErrorKind classifies an entry of the error map.
type ErrorKind int

const (
	KindDefinition ErrorKind = iota + 1
	KindStructural
	KindSource
	KindCoercion
	KindValidation
	KindHandlerProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindStructural:
		return "structural"
	case KindSource:
		return "source"
	case KindCoercion:
		return "coercion"
	case KindValidation:
		return "validation"
	case KindHandlerProtocol:
		return "handler"
	default:
		return "unknown"
	}
}

// Error is one entry of the error map, keyed by option name or by a synthetic
// key such as KeyDuplicatePositional.
type Error struct {
	Key     string
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Errors is an immutable view of the error map produced by a parse cycle.
type Errors struct {
	entries map[string]*Error
}

// Len reports the number of keys carrying an error.
func (e Errors) Len() int {
	return len(e.entries)
}

// Empty reports whether no errors were recorded.
func (e Errors) Empty() bool {
	return len(e.entries) == 0
}

// Has reports whether key carries an error.
func (e Errors) Has(key string) bool {
	_, ok := e.entries[key]
	return ok
}

// Get returns the message recorded for key.
func (e Errors) Get(key string) (string, bool) {
	entry, ok := e.entries[key]
	if !ok {
		return "", false
	}
	return entry.Message, true
}

// Lookup returns a copy of the entry recorded for key.
func (e Errors) Lookup(key string) (Error, bool) {
	entry, ok := e.entries[key]
	if !ok {
		return Error{}, false
	}
	return *entry, true
}

// Keys returns the error keys sorted alphabetically.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e.entries))
	for key := range e.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Messages returns a copy of the key to message mapping.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e.entries))
	for key, entry := range e.entries {
		out[key] = entry.Message
	}
	return out
}

// OfKind returns the keys whose error has kind k, sorted.
func (e Errors) OfKind(k ErrorKind) []string {
	var keys []string
	for _, key := range e.Keys() {
		if e.entries[key].Kind == k {
			keys = append(keys, key)
		}
	}
	return keys
}

// Err joins every entry into a single error, or returns nil when empty.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	errs := make([]error, 0, len(e.entries))
	for _, key := range e.Keys() {
		entry := *e.entries[key]
		errs = append(errs, &entry)
	}
	return errors.Join(errs...)
}

// errorSet accumulates errors during a cycle. Later stages overwrite earlier
// entries under the same key.
type errorSet map[string]*Error

func (s errorSet) add(kind ErrorKind, key, format string, args ...any) {
	s[key] = &Error{Key: key, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (s errorSet) put(err *Error) {
	if err == nil {
		return
	}
	copied := *err
	s[err.Key] = &copied
}

func (s errorSet) freeze() Errors {
	entries := make(map[string]*Error, len(s))
	for key, entry := range s {
		copied := *entry
		entries[key] = &copied
	}
	return Errors{entries: entries}
}

// ParseError is returned by Resolve when a cycle finishes with errors.
type ParseError struct {
	Errors Errors
}

func (e *ParseError) Error() string {
	if e == nil || e.Errors.Empty() {
		return "cliparser: parse failed"
	}
	keys := e.Errors.Keys()
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		message, _ := e.Errors.Get(key)
		parts = append(parts, fmt.Sprintf("%s: %s", key, message))
	}
	return fmt.Sprintf("cliparser: parse failed with %d error(s): %s", len(keys), strings.Join(parts, "; "))
}

// Unwrap exposes the individual entries to errors.Is and errors.As.
func (e *ParseError) Unwrap() []error {
	if e == nil || e.Errors.Empty() {
		return nil
	}
	keys := e.Errors.Keys()
	out := make([]error, 0, len(keys))
	for _, key := range keys {
		entry, _ := e.Errors.Lookup(key)
		out = append(out, &entry)
	}
	return out
}
