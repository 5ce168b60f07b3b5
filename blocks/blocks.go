// Package blocks provides the stock tick blocks of the built-in node
// palette: accumulating generators, arithmetic processors, and filters.
// Stateful constructors return the block together with a reset function
// meant for runtime.WithReset.
package blocks

import "sync"

// Number constrains the arithmetic blocks to ordered numeric types.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Integer constrains parity-based blocks to integer types.
type Integer interface {
	~int | ~int32 | ~int64
}

// Clock returns a stopwatch accumulator block emitting (seconds, minutes)
// and its reset function. Each tick advances seconds by one; seconds roll
// over to zero at sixty and carry into minutes.
func Clock() (block func() (int, int, error), reset func()) {
	var mu sync.Mutex
	seconds, minutes := 0, 0

	block = func() (int, int, error) {
		mu.Lock()
		defer mu.Unlock()
		seconds++
		if seconds >= 60 {
			seconds = 0
			minutes++
		}
		return seconds, minutes, nil
	}
	reset = func() {
		mu.Lock()
		defer mu.Unlock()
		seconds, minutes = 0, 0
	}
	return block, reset
}

// Counter returns a monotonic generator block starting at one, and its
// reset function.
func Counter() (block func() (int, error), reset func()) {
	var mu sync.Mutex
	n := 0

	block = func() (int, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return n, nil
	}
	reset = func() {
		mu.Lock()
		defer mu.Unlock()
		n = 0
	}
	return block, reset
}

// Add returns a join block summing its two inputs.
func Add[T Number]() func(T, T) (T, error) {
	return func(a, b T) (T, error) {
		return a + b, nil
	}
}

// Multiply returns a join block multiplying its two inputs.
func Multiply[T Number]() func(T, T) (T, error) {
	return func(a, b T) (T, error) {
		return a * b, nil
	}
}

// Scale returns a transform block multiplying each value by factor.
func Scale[T Number](factor T) func(T) (T, error) {
	return func(v T) (T, error) {
		return v * factor, nil
	}
}

// PassThrough returns an identity transform block.
func PassThrough[T any]() func(T) (T, error) {
	return func(v T) (T, error) {
		return v, nil
	}
}

// Threshold returns a filter block passing values greater than or equal to
// min.
func Threshold[T Number](min T) func(T) (T, bool, error) {
	return func(v T) (T, bool, error) {
		return v, v >= min, nil
	}
}

// Even returns a filter block passing even values.
func Even[T Integer]() func(T) (T, bool, error) {
	return func(v T) (T, bool, error) {
		return v, v%2 == 0, nil
	}
}
