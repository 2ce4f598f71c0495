package domain

import "fmt"

// ErrKind classifies provider failures. Transport covers DNS, connect,
// TLS and timeout failures; Decode covers malformed or unexpected payloads.
type ErrKind int

const (
	ErrTransport ErrKind = iota
	ErrDecode
)

// ProviderError is the only error type a Provider surfaces: an opaque
// message plus the originating provider's name.
type ProviderError struct {
	Provider string
	Kind     ErrKind
	Op       string // e.g. "fetch nodes"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
