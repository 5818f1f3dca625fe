package failfast

import (
	"errors"
	"strings"
	"testing"
)

func mustPanic(t *testing.T, wantSubstr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value type = %T, want error", r)
		}
		if !strings.Contains(err.Error(), wantSubstr) {
			t.Errorf("panic = %q, want substring %q", err.Error(), wantSubstr)
		}
	}()
	fn()
}

func mustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("unexpected panic: %v", r)
		}
	}()
	fn()
}

func TestErr(t *testing.T) {
	mustNotPanic(t, func() { Err(nil) })
	mustPanic(t, "fail-fast: boom", func() { Err(errors.New("boom")) })
}

func TestErr_Unwraps(t *testing.T) {
	sentinel := errors.New("sentinel")
	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, sentinel) {
			t.Errorf("panic error = %v, want wrapping sentinel", err)
		}
	}()
	Err(sentinel)
}

func TestIf(t *testing.T) {
	mustNotPanic(t, func() { If(true, "unused") })
	mustPanic(t, "port 0 out of range", func() { If(false, "port %d out of range", 0) })
}

type store struct{}

type repository interface{ Get() }

func TestNotNil(t *testing.T) {
	var nilPtr *store
	var nilFunc func()
	var nilMap map[string]int
	var nilIface repository

	tests := []struct {
		name      string
		value     any
		wantPanic bool
	}{
		{"untyped nil", nil, true},
		{"typed nil pointer", nilPtr, true},
		{"nil func", nilFunc, true},
		{"nil map", nilMap, true},
		{"nil interface", nilIface, true},
		{"pointer", &store{}, false},
		{"struct value", store{}, false},
		{"string", "", false},
		{"func", func() {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				mustPanic(t, "repo is nil", func() { NotNil(tt.value, "repo") })
			} else {
				mustNotPanic(t, func() { NotNil(tt.value, "repo") })
			}
		})
	}
}
