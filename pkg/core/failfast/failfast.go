// Package failfast turns broken preconditions into immediate panics at
// construction time, before a misconfigured component can serve requests.
package failfast

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// Err panics with err and the current stack when err != nil.
func Err(err error) {
	if err != nil {
		panic(fmt.Errorf("fail-fast: %w\n%s", err, debug.Stack()))
	}
}

// If panics with a formatted message when condition is false.
func If(condition bool, format string, args ...any) {
	if !condition {
		panic(fmt.Errorf("fail-fast: "+format, args...))
	}
}

// NotNil panics when v is nil, including typed nils hidden in an interface
// (nil pointers, funcs, maps, channels).
func NotNil(v any, name string) {
	if isNil(v) {
		panic(fmt.Errorf("fail-fast: %s is nil", name))
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
