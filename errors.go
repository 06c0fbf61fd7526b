package wordvec

import (
	"errors"
	"fmt"
)

var (
	// ErrBuilderClosed is returned when a closed builder is used.
	ErrBuilderClosed = errors.New("builder is closed")
	// ErrAlreadyCompiled is returned when a builder is mutated or compiled
	// after a successful compile. A builder is consumed exactly once.
	ErrAlreadyCompiled = errors.New("builder already compiled")
)

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrDimensionMismatch indicates a vector whose length does not match the
// index dimension, at insert or corpus-merge time.
type ErrDimensionMismatch struct {
	Word     string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch for %q: expected %d, got %d", e.Word, e.Expected, e.Actual)
}

// ErrSetup indicates that a builder destination could not be prepared.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrSetup struct {
	Path  string
	cause error
}

func (e *ErrSetup) Error() string {
	return fmt.Sprintf("cannot prepare destination %q: %v", e.Path, e.cause)
}

func (e *ErrSetup) Unwrap() error { return e.cause }

// ErrCorrupted indicates a bad, missing, or truncated compiled index file.
//
// The original underlying error (a persistence sentinel, checksum mismatch
// or I/O error) can be accessed via errors.Unwrap.
type ErrCorrupted struct {
	Path  string
	cause error
}

func (e *ErrCorrupted) Error() string {
	return fmt.Sprintf("corrupted index %q: %v", e.Path, e.cause)
}

func (e *ErrCorrupted) Unwrap() error { return e.cause }

// ErrHashCollision indicates that two distinct words hashed to the same
// 64-bit key during compile. The compiled format stores only hashed keys,
// so a collision cannot be represented and the compile fails rather than
// silently keeping one entry.
type ErrHashCollision struct {
	Key   uint64
	Words [2]string
}

func (e *ErrHashCollision) Error() string {
	return fmt.Sprintf("hash collision on key 0x%016x: %q and %q", e.Key, e.Words[0], e.Words[1])
}
