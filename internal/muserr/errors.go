// Package muserr defines the sentinel error kinds shared across muse's
// components, so callers can classify failures with errors.Is/errors.As
// instead of string matching.
package muserr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap these with fmt.Errorf("...: %w", ...) to add
// context while keeping them classifiable.
var (
	// ErrSeedNotFound means no song matched a fuzzy seed query.
	ErrSeedNotFound = errors.New("seed not found")

	// ErrNotFound means a lookup found no matching row. Recoverable.
	ErrNotFound = errors.New("not found")

	// ErrStorage wraps an underlying catalogue storage failure.
	ErrStorage = errors.New("storage error")

	// ErrQueueTooShort means queue construction could not reach min_length.
	ErrQueueTooShort = errors.New("queue too short")

	// ErrPlayer wraps a player subprocess/transport failure.
	ErrPlayer = errors.New("player error")

	// ErrPathMapping means a path fell outside the music root, was empty,
	// or root discovery failed.
	ErrPathMapping = errors.New("path mapping error")

	// ErrSupervisor means the identity file was missing/corrupt or the
	// daemon could not be spawned/signaled.
	ErrSupervisor = errors.New("supervisor error")
)

// Storage wraps err as a storage error, tagged with the failing operation.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, err, ErrStorage)
}

// Wrap annotates err with a sentinel kind via %w so errors.Is(result, kind)
// holds in addition to errors.Is(result, err).
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
