// Package fallback turns any fault raised while updating or rendering into a fixed text message.
// Once a Boundary trips it stays tripped; there is no retry.
package fallback

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
)

// Heading is the first line of every fallback message.
const Heading = "Something went wrong:"

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Boundary is a catch-all around a unit of work. The first fault it sees, a returned error or a
// panic, is captured and logged; every later fault is ignored.
type Boundary interface {
	// Guard runs fn and captures the fault it produces. Panics are recovered.
	//
	// Parameters:
	//   - fn: the work to run
	//
	// Returns:
	//   - error: the fault produced by this call, nil if fn succeeded
	Guard(fn func() error) error

	// Trip captures err as if a guarded call had returned it. A nil err is ignored.
	Trip(err error)

	// Tripped reports whether a fault has been captured.
	Tripped() bool

	// Err returns the captured fault, or nil.
	Err() error

	// Message returns the fallback text for the captured fault, empty while not tripped.
	Message() string
}

type boundary struct {
	mu     *sync.Mutex
	err    error
	logger func(format string, args ...any)
}

var _ Boundary = &boundary{}

// NewBoundary creates an untripped Boundary that logs with the standard logger.
//
// Returns:
//   - Boundary: the new boundary
func NewBoundary(options ...BoundaryBuilderOption) Boundary {
	b := &boundary{
		mu:     &sync.Mutex{},
		logger: log.Printf,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *boundary) Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil {
			b.Trip(err)
		}
	}()
	return fn()
}

func (b *boundary) Trip(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return
	}
	b.err = err
	var pe *PanicError
	if errors.As(err, &pe) {
		b.logger("[fallback] recovered panic: %v\n%s", pe, pe.Stack)
		return
	}
	b.logger("[fallback] %v", err)
}

func (b *boundary) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err != nil
}

func (b *boundary) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *boundary) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		return ""
	}
	return FormatMessage(b.err)
}

// FormatMessage renders the fallback text for an error: the heading on the first line followed by
// the error message.
//
// Parameters:
//   - err: the fault to describe
//
// Returns:
//   - string: the fallback text
func FormatMessage(err error) string {
	return Heading + "\n" + err.Error()
}
