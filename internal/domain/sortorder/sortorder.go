// Package sortorder computes fractional ordering keys for task
// positioning. Inserting a task between two neighbors takes the
// midpoint of their keys instead of renumbering the whole list, which
// keeps drag-and-drop reordering a single-row write.
//
// All results are rounded to a fixed number of decimal places to bound
// floating-point drift from repeated bisection. After enough successive
// insertions between the same two neighbors the midpoint can collide
// with one of its operands (precision exhaustion); that degenerate case
// is a documented limitation, not silently corrected here.
package sortorder

import (
	"errors"
	"math"
)

// Precision is the number of decimal places every computed key is
// rounded to.
const Precision = 6

// ErrInvalidContext is returned when a reorder request supplies both an
// over-task reference and a column-last reference; exactly one of the
// three positioning modes must apply.
var ErrInvalidContext = errors.New("invalid reorder context")

// Mode identifies which of the three positioning rules applies to a
// reorder request.
type Mode int

const (
	// ModeAppend places the task at the absolute end of the board:
	// current maximum key + 1.
	ModeAppend Mode = iota

	// ModeBefore places the task directly before a reference task,
	// between the reference and its predecessor.
	ModeBefore

	// ModeAfter places the task directly after the last task of a
	// column, between that task and its successor.
	ModeAfter
)

// SelectMode chooses the positioning mode from the presence of the two
// optional references. Supplying neither is valid (append); supplying
// both is not.
func SelectMode(hasOverTask, hasColumnLastTask bool) (Mode, error) {
	switch {
	case hasOverTask && hasColumnLastTask:
		return 0, ErrInvalidContext
	case hasOverTask:
		return ModeBefore, nil
	case hasColumnLastTask:
		return ModeAfter, nil
	default:
		return ModeAppend, nil
	}
}

// Append returns the key for a task moved to the absolute end of the
// board. currentMax is the highest key among non-archived tasks, or 0
// when the board is empty.
func Append(currentMax float64) float64 {
	return round(currentMax + 1)
}

// Before returns the key for a task inserted directly before the
// reference. predecessor is the key of the task immediately above the
// reference (the next-higher key among non-archived tasks); it is nil
// when the reference is currently first, in which case the new key is
// reference + 1.
func Before(reference float64, predecessor *float64) float64 {
	if predecessor == nil {
		return round(reference + 1)
	}
	return midpoint(*predecessor, reference)
}

// After returns the key for a task inserted directly after the
// reference (the last task of a column). successor is the key of the
// task immediately below the reference; it is nil when the reference
// is currently last, in which case the new key is reference - 1.
func After(reference float64, successor *float64) float64 {
	if successor == nil {
		return round(reference - 1)
	}
	return midpoint(*successor, reference)
}

// midpoint returns the rounded average of two keys.
func midpoint(a, b float64) float64 {
	return round((a + b) / 2)
}

// round truncates v to Precision decimal places using half-away-from-
// zero rounding, matching toFixed semantics in the web client.
func round(v float64) float64 {
	shift := math.Pow10(Precision)
	return math.Round(v*shift) / shift
}
