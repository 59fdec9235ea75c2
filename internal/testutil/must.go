package testutil

import (
	"fmt"
	"testing"
)

// EqFatal stops the test when got differs from want. Extra args describe the
// value being compared.
func EqFatal[V comparable](t *testing.T, got, want V, what ...any) {
	t.Helper()
	if got != want {
		t.Fatalf("%sgot %v, want %v", label(what), got, want)
	}
}

// NoError stops the test when err is non-nil.
func NoError(t *testing.T, err error, what ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s%v", label(what), err)
	}
}

func label(what []any) string {
	if len(what) == 0 {
		return ""
	}
	return fmt.Sprint(what...) + ": "
}
