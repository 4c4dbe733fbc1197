// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package di

import (
	"fmt"
	"reflect"
)

// coerce adapts v to the static type t, converting when the underlying
// kinds allow it. A nil v with a known t produces t's zero value, which is
// how ParameterResolver and PropertyResolver implement "null is a
// legitimate value" without a separate sentinel wrapper type.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.ValueOf(v), nil
	}
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("di: cannot use value of type %s as %s", rv.Type(), t)
}

// isReflectable reports whether t is a "reflectable class" in the sense of
// spec.md §4.5 step 4: a struct, a pointer to a struct, or an interface —
// the shapes ClassResolver knows how to construct or redirect. Builtin
// kinds (numbers, strings, slices, maps, funcs, channels) are never
// reflectable and fall through to definition/supplied/default resolution
// instead.
func isReflectable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Interface:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// isNilable reports whether the zero value of t is a meaningful "no value"
// (spec.md §4.5 Phase B step 4: "nil if the type allows null").
func isNilable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// typeIdentifier returns the canonical identifier used for "by-type"
// definition lookups (spec.md §4.5 step 3).
func typeIdentifier(t reflect.Type) string {
	return t.String()
}

// firstArgSupply forwards a named user-supplied value to a nested class
// resolution as its transient first constructor argument (spec.md §4.5
// step 4e: "with any supplied[param-name] forwarded as first-constructor
// argument"). A nil/absent name or value yields nil, meaning no override.
func firstArgSupply(v any, name string) any {
	if name == "" {
		return nil
	}
	return v
}
