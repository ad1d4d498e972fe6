// Package invariant provides contract assertions for the e-graph core.
//
// This follows the Tiger Style safety principle: assertions are a force
// multiplier for discovering bugs. Use Precondition/Postcondition to express
// function contracts, and Invariant for internal consistency checks.
//
// All functions panic on violation - these catch programming errors in the
// core itself, never user-controlled preset content (that goes through
// egvis.Error instead).
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks an internal invariant during function execution.
//
// Example:
//
//	prevLen := len(uf.parent)
//	uf.makeSet(id)
//	invariant.Invariant(len(uf.parent) == prevLen+1, "union-find must grow by exactly one entry")
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils.
func NotNil(value interface{}, name string) {
	if value == nil || isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// InRange panics if value is outside [min, max].
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d", name, minVal, maxVal, value)
	}
}

// Positive panics if value <= 0.
func Positive(value int, name string) {
	if value <= 0 {
		fail("POSTCONDITION", "%s must be positive, got %d", name, value)
	}
}

// NonNegative panics if value < 0. Used for NodeId-shaped values, which are
// allowed to be zero (the first allocated id) unlike Positive's callers.
func NonNegative(value int, name string) {
	if value < 0 {
		fail("PRECONDITION", "%s must be non-negative, got %d", name, value)
	}
}

// ExpectNoError panics if error is not nil.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

// fail panics with a formatted message including call stack context.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}
	panic(msg)
}
