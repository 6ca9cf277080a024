package runtimex

import (
	"errors"
	"testing"
)

func TestPanicOnError(t *testing.T) {
	badfunc := func(in error) (out error) {
		defer func() {
			out = recover().(error)
		}()
		PanicOnError(in, "we expect this assertion to fail")
		return
	}

	t.Run("error is nil", func(t *testing.T) {
		PanicOnError(nil, "this assertion should not fail")
	})

	t.Run("error is not nil", func(t *testing.T) {
		expected := errors.New("mocked error")
		out := badfunc(expected)
		if !errors.Is(out, expected) {
			t.Fatal("not the error we expected", out)
		}
	})
}

func TestAssert(t *testing.T) {
	badfunc := func(in bool, message string) (out error) {
		defer func() {
			out = recover().(error)
		}()
		Assert(in, message)
		return
	}

	t.Run("assertion is true", func(t *testing.T) {
		Assert(true, "this assertion should not fail")
	})

	t.Run("assertion is false", func(t *testing.T) {
		message := "mocked error"
		out := badfunc(false, message)
		if out == nil || out.Error() != message {
			t.Fatal("not the panic we expected", out)
		}
	})
}

func TestTry0(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		Try0(nil)
	})

	t.Run("on failure", func(t *testing.T) {
		expected := errors.New("mocked error")
		var got error
		func() {
			defer func() {
				got = recover().(error)
			}()
			Try0(expected)
		}()
		if !errors.Is(got, expected) {
			t.Fatal("not the error we expected", got)
		}
	})
}

func TestTry1(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		if value := Try1(17, nil); value != 17 {
			t.Fatal("unexpected value", value)
		}
	})

	t.Run("on failure", func(t *testing.T) {
		expected := errors.New("mocked error")
		var got error
		func() {
			defer func() {
				got = recover().(error)
			}()
			_ = Try1(17, expected)
		}()
		if !errors.Is(got, expected) {
			t.Fatal("not the error we expected", got)
		}
	})
}
