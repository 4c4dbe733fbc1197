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

import "reflect"

// ParamSpec describes one declared parameter of a constructor, factory, or
// method for the purposes of ParameterResolver.
//
// Go retains no runtime name information for function parameters, so Name is
// supplied here explicitly at bind time (spec.md §9's "explicit registration
// metadata" substitute for reflection). Type is usually left zero and filled
// in automatically from the underlying func's signature by Ctor/Method; set
// it only when describing a parameter by hand.
type ParamSpec struct {
	// Name is the parameter's logical name, used for by-name definition
	// lookup and for matching user-supplied-by-name values.
	Name string
	// Type is the parameter's static type. Left zero when built via Ctor
	// or Method, which fill it in from the function's reflect.Type.
	Type reflect.Type
	// Default, if HasDefault is true, is used when no other source
	// produces a value for this parameter.
	Default any
	// HasDefault reports whether Default should be used as a fallback.
	HasDefault bool
	// Nullable reports whether a nil value is an acceptable resolution
	// when every other source is exhausted.
	Nullable bool
	// Infuse, if non-nil, is consulted when no definition, reflectable
	// class, or supplied value satisfies this parameter.
	Infuse *InfuseDescriptor

	// variadic marks this ParamSpec as the variadic tail of its owning
	// signature; set automatically by Ctor/Method from the underlying
	// reflect.Type.
	variadic bool
}

// ConstructorSpec binds a constructor function to the ParamSpec list
// ParameterResolver uses to resolve its arguments.
type ConstructorSpec struct {
	Fn       reflect.Value
	Params   []ParamSpec
	Supplied map[string]any // constructor.params user overrides, by name
	Overflow []any          // numeric overflow values beyond the named params
	Infuse   map[string]InfuseDescriptor // per-name Infuse descriptors; not consulted, since resolveParameters reads them only on method passes
}

// MethodSpec binds a post-construction method (selected by name on the
// owning type) to the ParamSpec list used to resolve its arguments.
type MethodSpec struct {
	Name     string
	Fn       reflect.Value // method expression passed to Method; invokeMethod calls the method found by Name on the instance, not Fn
	Params   []ParamSpec
	Supplied map[string]any
	Overflow []any
	Infuse   map[string]InfuseDescriptor // method-level Infuse overrides, by parameter name
}

// Ctor builds a ConstructorSpec from a plain Go function. names supplies the
// logical parameter names in declaration order; it may be shorter than the
// function's arity (trailing parameters are then anonymous and only
// resolvable by type or position), but never longer.
//
// Example:
//
//	ctor := di.Ctor(NewService, "cfg", "logger")
func Ctor(fn any, names ...string) ConstructorSpec {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	n := ft.NumIn()
	params := make([]ParamSpec, n)
	for i := 0; i < n; i++ {
		p := ParamSpec{Type: ft.In(i)}
		if i < len(names) {
			p.Name = names[i]
		}
		if ft.IsVariadic() && i == n-1 {
			p.Type = ft.In(i).Elem()
			p.variadic = true
		}
		params[i] = p
	}
	return ConstructorSpec{Fn: fv, Params: params}
}

// WithDefault sets a fallback value for the i-th parameter of a
// ConstructorSpec or MethodSpec, returned by value so it can be chained:
//
//	ctor := di.Ctor(NewService, "cfg", "retries").WithDefault(1, 3)
func (c ConstructorSpec) WithDefault(i int, def any) ConstructorSpec {
	c.Params[i].Default = def
	c.Params[i].HasDefault = true
	return c
}

// WithNullable marks the i-th parameter as accepting nil as a last resort.
func (c ConstructorSpec) WithNullable(i int) ConstructorSpec {
	c.Params[i].Nullable = true
	return c
}

// WithInfuse attaches a built-in Infuse descriptor to the i-th parameter,
// consulted when no definition, reflectable class, or supplied value exists.
func (c ConstructorSpec) WithInfuse(i int, d InfuseDescriptor) ConstructorSpec {
	c.Params[i].Infuse = &d
	return c
}

// WithSupplied attaches user-supplied-by-name overrides, the highest
// priority source in ParameterResolver's precedence order.
func (c ConstructorSpec) WithSupplied(values map[string]any) ConstructorSpec {
	c.Supplied = values
	return c
}

// WithOverflow attaches the numeric overflow list consumed by Phase B when
// a deferred parameter has no other source.
func (c ConstructorSpec) WithOverflow(values ...any) ConstructorSpec {
	c.Overflow = values
	return c
}

// Method builds a MethodSpec from a plain Go function whose first parameter
// is the receiver (i.e. a method expression, e.g. (*Service).Init). The
// receiver parameter is excluded from the resolved parameter list.
func Method(name string, fn any, names ...string) MethodSpec {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	n := ft.NumIn() - 1 // exclude receiver
	if n < 0 {
		n = 0
	}
	params := make([]ParamSpec, n)
	for i := 0; i < n; i++ {
		p := ParamSpec{Type: ft.In(i + 1)}
		if i < len(names) {
			p.Name = names[i]
		}
		if ft.IsVariadic() && i == n-1 {
			p.Type = ft.In(i + 1).Elem()
			p.variadic = true
		}
		params[i] = p
	}
	return MethodSpec{Name: name, Fn: fv, Params: params}
}

// WithDefault sets a fallback value for the i-th parameter of a MethodSpec.
func (m MethodSpec) WithDefault(i int, def any) MethodSpec {
	m.Params[i].Default = def
	m.Params[i].HasDefault = true
	return m
}

// WithInfuse attaches a built-in Infuse descriptor to the i-th parameter of
// a MethodSpec.
func (m MethodSpec) WithInfuse(i int, d InfuseDescriptor) MethodSpec {
	m.Params[i].Infuse = &d
	return m
}

// WithSupplied attaches user-supplied-by-name overrides for a MethodSpec.
func (m MethodSpec) WithSupplied(values map[string]any) MethodSpec {
	m.Supplied = values
	return m
}

// WithOverflow attaches the numeric overflow list for a MethodSpec.
func (m MethodSpec) WithOverflow(values ...any) MethodSpec {
	m.Overflow = values
	return m
}

// classMetadata is the per-type record Repository keeps: constructor
// overrides, an optional post-construction method, and property overrides.
// It mirrors spec.md §3's "Class metadata" entry.
type classMetadata struct {
	typ        reflect.Type
	ctor       *ConstructorSpec
	method     *MethodSpec
	properties map[string]any
	callOn     string // class-level default method name, analogous to a "callOn" constant
}

// classCacheEntry is the per-type resolved-instance record.
type classCacheEntry struct {
	instance     any
	returned     any
	hasReturned  bool
	propertyDone bool
}
