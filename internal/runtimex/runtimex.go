// Package runtimex contains runtime extensions. This package is
// inspired to https://pkg.go.dev/github.com/m-lab/go/rtx, except that
// it's simpler.
package runtimex

import (
	"errors"
	"fmt"
)

// PanicOnError calls panic() if err is not nil. The type passed to
// panic is an error type wrapping the original error.
func PanicOnError(err error, message string) {
	if err != nil {
		panic(fmt.Errorf("%s: %w", message, err))
	}
}

// Assert calls panic if assertion is false, using the given message.
func Assert(assertion bool, message string) {
	if !assertion {
		panic(errors.New(message))
	}
}

// Try0 calls [PanicOnError] if err is not nil.
func Try0(err error) {
	PanicOnError(err, "Try0")
}

// Try1 is like [Try0] but returns t1 on success.
func Try1[T1 any](t1 T1, err error) T1 {
	Try0(err)
	return t1
}
