package data

import (
	"errors"
	"fmt"
	"sync"
)

// Standard errors that sources, engines and stores should use.
var (
	// Selection errors
	ErrEmptySelection = errors.New("modexport: no active mods")
	ErrModNotFound    = errors.New("modexport: mod not found")

	// Export errors
	ErrCrossVolume  = errors.New("modexport: hardlink across storage volumes")
	ErrFilesystem   = errors.New("modexport: filesystem operation failed")
	ErrArchiveWrite = errors.New("modexport: archive write failed")

	// Settings errors
	ErrInvalidSetting   = errors.New("modexport: invalid setting value")
	ErrUnknownBackend   = errors.New("modexport: unknown settings backend")
	ErrMalformedAddress = errors.New("modexport: malformed backend address")

	// Generic errors
	ErrNotExist   = errors.New("modexport: does not exist")
	ErrPermission = errors.New("modexport: permission denied")
	ErrClosed     = errors.New("modexport: already closed")
	ErrInvalid    = errors.New("modexport: invalid argument")
)

// ExportError describes an export run that stopped on a failing plan entry.
// Entries before the failing one stay written on the target.
type ExportError struct {
	Op        string
	Path      string
	Completed int
	Remaining int
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s '%s' failed after %d of %d entries: %v",
		e.Op, e.Path, e.Completed, e.Completed+e.Remaining, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Errors collects non-fatal errors, mostly from deferred close calls.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
