package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCatalog matches every construction failure.
	ErrMalformedCatalog = errors.New("malformed catalog")
	// ErrUnknownPool matches lookups of undefined pool references.
	ErrUnknownPool = errors.New("unknown pool")
	// ErrOutOfRange matches slot positions outside the board.
	ErrOutOfRange = errors.New("slot position out of range")
)

// MalformedCatalogError reports a structural defect found while building a
// catalog. A catalog is never returned alongside it.
type MalformedCatalogError struct {
	Reason string
	Cause  error
}

// Malformed builds a MalformedCatalogError from a formatted reason.
func Malformed(format string, args ...any) *MalformedCatalogError {
	return &MalformedCatalogError{Reason: fmt.Sprintf(format, args...)}
}

// MalformedWrap builds a MalformedCatalogError around an underlying cause.
func MalformedWrap(reason string, cause error) *MalformedCatalogError {
	return &MalformedCatalogError{Reason: reason, Cause: cause}
}

func (e *MalformedCatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed catalog: %s: %v", e.Reason, e.Cause)
	}
	return "malformed catalog: " + e.Reason
}

func (e *MalformedCatalogError) Unwrap() error {
	return e.Cause
}

func (e *MalformedCatalogError) Is(target error) bool {
	return target == ErrMalformedCatalog
}

// UnknownPoolError reports a lookup of a pool the catalog does not define.
type UnknownPoolError struct {
	ID PoolID
}

func (e *UnknownPoolError) Error() string {
	return fmt.Sprintf("unknown pool %q", string(e.ID))
}

func (e *UnknownPoolError) Is(target error) bool {
	return target == ErrUnknownPool
}

// OutOfRangeError reports a slot position outside [0, SlotCount).
type OutOfRangeError struct {
	Position  int
	SlotCount int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("slot position %d out of range [0, %d)", e.Position, e.SlotCount)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
