package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics when a required dependency is missing. A nil pointer held
// in an interface counts as missing.
func NotNil(name string, value any) {
	if value == nil {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			panic(fmt.Sprintf("%s must not be nil (got nil %T)", name, value))
		}
	}
}
