package reflect

import (
	"reflect"
	"sync"
)

var typeNameCache sync.Map

// TypeName returns a readable name for T, including interface types.
func TypeName[T any]() string {
	return typeName(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeNameOf returns the dynamic type name of v.
func TypeNameOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeName(reflect.TypeOf(v))
}

func typeName(t reflect.Type) string {
	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}

	name := t.String()
	typeNameCache.Store(t, name)
	return name
}

// IsNil reports whether v is nil or a typed nil.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
