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

// MethodSelector controls which post-construction method ClassResolver
// invokes after constructing and property-injecting an instance (spec.md
// §4.4 step 7).
type MethodSelector struct {
	name string
	has  bool
	skip bool
}

// DefaultMethodSelection lets ClassResolver fall through its normal chain:
// the registered MethodSpec name, then the type's callOn default, then the
// container-wide default method.
var DefaultMethodSelection = MethodSelector{}

// ExplicitMethod pins the method to invoke, taking priority over every
// other source in the selection chain.
func ExplicitMethod(name string) MethodSelector { return MethodSelector{name: name, has: true} }

// SkipMethod suppresses method invocation entirely, equivalent to passing
// callMethod=false in the original Resolution API (spec.md §6 `make`).
func SkipMethod() MethodSelector { return MethodSelector{skip: true} }

// classResult is the return value of ClassResolver.resolve (spec.md §4.4):
// the constructed instance and, if a method was invoked, its return value.
type classResult struct {
	instance    any
	returned    any
	hasReturned bool
}

// resolveClass implements ClassResolver.resolve. firstArg, when non-nil, is
// forwarded as the transient first constructor argument (used when a
// reflectable parameter carries a named user-supplied value, spec.md §4.5
// step 4e); it never mutates the type's stored ConstructorSpec.
//
// lifetime governs the type-keyed class cache at step 2/5/6/7 (spec.md §4.4:
// "Cache gate... (Singleton scope)"): only Singleton resolutions consult or
// populate it. A Transient or Scoped ClassRef/ClassMethodRef definition
// bypasses it entirely and relies on DefinitionResolver's own scope-keyed or
// no-cache handling (spec.md §4.3 steps 3/5) instead — otherwise the type
// cache would silently upgrade it to Singleton. Callers resolving a type
// directly rather than through a bound Definition (Container.Get's
// typeByName fallback, reflectable-class constructor parameters,
// resolveInfuse's by-name lookups) pass Singleton, matching the original's
// unconditional class-cache behavior for that path.
func (c *Container) resolveClass(typ reflect.Type, firstArg any, sel MethodSelector, lifetime Lifetime) (classResult, error) {
	key := "type:" + typ.String()
	cleanup, err := c.repo.enter(key)
	if err != nil {
		return classResult{}, err
	}
	defer cleanup()

	pop := c.repo.tracer.push("class:" + typ.String())
	defer pop()

	// 1. Interface redirection.
	if typ.Kind() == reflect.Interface {
		concrete, ok := c.repo.getEnvConcrete(typ)
		if !ok {
			if firstArg != nil {
				if ct := reflect.TypeOf(firstArg); ct != nil && ct.Implements(typ) {
					concrete = ct
					ok = true
				}
			}
		}
		if !ok {
			return classResult{}, InterfaceResolutionError{Interface: typ}
		}
		if !concrete.Implements(typ) {
			return classResult{}, InterfaceImplementationError{Interface: typ, Concrete: concrete}
		}
		return c.resolveClass(concrete, firstArg, sel, lifetime)
	}

	cacheable := lifetime == Singleton

	// 2. Cache gate (Singleton-style class cache only).
	if cacheable {
		if entry, ok := c.repo.getClassCache(typ); ok && entry.propertyDone {
			return classResult{instance: entry.instance, returned: entry.returned, hasReturned: entry.hasReturned}, nil
		}
	}

	meta, _ := c.repo.getClassMetadata(typ)

	// 3 & 4. Instantiability check + constructor resolution.
	instance, err := c.construct(typ, meta, firstArg)
	if err != nil {
		return classResult{}, err
	}

	// 5. Store instance.
	entry := &classCacheEntry{instance: instance}
	if cacheable {
		c.repo.setClassCache(typ, entry)
	}

	// 6. Property injection.
	if err := c.resolveProperties(typ, meta, instance); err != nil {
		return classResult{}, err
	}
	entry.propertyDone = true
	if cacheable {
		c.repo.setClassCache(typ, entry)
	}

	// 7. Method selection and invocation.
	methodName := c.selectMethod(meta, sel)
	if methodName != "" {
		ret, hasRet, err := c.invokeMethod(typ, meta, instance, methodName)
		if err != nil {
			return classResult{}, err
		}
		entry.returned, entry.hasReturned = ret, hasRet
		if cacheable {
			c.repo.setClassCache(typ, entry)
		}
	}

	return classResult{instance: instance, returned: entry.returned, hasReturned: entry.hasReturned}, nil
}

// construct performs the instantiability check and constructor resolution
// of spec.md §4.4 steps 3-4.
func (c *Container) construct(typ reflect.Type, meta *classMetadata, firstArg any) (any, error) {
	structType := typ
	if typ.Kind() == reflect.Pointer {
		structType = typ.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return nil, NotInstantiableError{Type: typ}
	}

	if meta == nil || meta.ctor == nil {
		// No registered constructor: construct the zero value directly,
		// the Go analogue of a PHP class with no __construct.
		if typ.Kind() == reflect.Pointer {
			return reflect.New(structType).Interface(), nil
		}
		return reflect.New(structType).Elem().Interface(), nil
	}

	ctor := *meta.ctor
	overflow := ctor.Overflow
	if firstArg != nil {
		overflow = append([]any{firstArg}, overflow...)
	}
	args, err := c.resolveParameters(typ.String()+".New", typ, ctor.Params, ctor.Supplied, overflow, ctor.Infuse, passConstructor)
	if err != nil {
		return nil, err
	}
	out := ctor.Fn.Call(args)
	return unpackResult(out)
}

// selectMethod implements spec.md §4.4 step 7's selection chain.
func (c *Container) selectMethod(meta *classMetadata, sel MethodSelector) string {
	if sel.skip {
		return ""
	}
	if sel.has {
		return sel.name
	}
	if meta != nil && meta.method != nil {
		return meta.method.Name
	}
	if meta != nil && meta.callOn != "" {
		return meta.callOn
	}
	r := c.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultMethod
}

// invokeMethod resolves a method's parameters and calls it, reporting
// whether it produced a return value (spec.md §4.4 step 7, §6 `getReturn`).
func (c *Container) invokeMethod(typ reflect.Type, meta *classMetadata, instance any, name string) (any, bool, error) {
	recv := reflect.ValueOf(instance)
	m := recv.MethodByName(name)
	if !m.IsValid() {
		// Method named but not present on the type: nothing to invoke,
		// nothing returned. This mirrors a no-op default method lookup
		// rather than an error, since defaultMethod is a container-wide
		// convention that not every type need satisfy.
		return nil, false, nil
	}

	var spec MethodSpec
	if meta != nil && meta.method != nil && meta.method.Name == name {
		spec = *meta.method
	} else {
		ft := m.Type()
		params := make([]ParamSpec, ft.NumIn())
		for i := range params {
			params[i] = ParamSpec{Type: ft.In(i)}
			if ft.IsVariadic() && i == ft.NumIn()-1 {
				params[i].Type = ft.In(i).Elem()
				params[i].variadic = true
			}
		}
		spec = MethodSpec{Name: name, Params: params}
	}

	args, err := c.resolveParameters(typ.String()+"."+name, typ, spec.Params, spec.Supplied, spec.Overflow, spec.Infuse, passMethod)
	if err != nil {
		return nil, false, err
	}
	out := m.Call(args)
	if len(out) == 0 {
		return nil, false, nil
	}
	ret, err := unpackResult(out)
	if err != nil {
		return nil, false, err
	}
	return ret, true, nil
}

// unpackResult interprets a reflect.Value slice as either (T) or (T, error),
// the two accepted shapes for constructors, factories, and methods.
func unpackResult(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if last.Type().Implements(errorInterface) {
			if !last.IsNil() {
				return nil, last.Interface().(error)
			}
			return out[0].Interface(), nil
		}
		return out[0].Interface(), nil
	}
}

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

// resolveInfuse implements spec.md §4.4's resolveInfuse helper: translating
// a built-in Infuse/Autowire/Inject descriptor into a value.
func (c *Container) resolveInfuse(d InfuseDescriptor) (any, error) {
	switch d.Kind {
	case InfuseEmpty:
		// Handled entirely at the call site (ClassResolver /
		// PropertyResolver already know the target's declared type).
		return nil, AttributeError{Target: "infuse", Message: "empty Infuse descriptor must be resolved by its caller"}

	case InfuseSingle:
		if c.repo.hasDefinition(d.Value) {
			return c.resolveDefinition(d.Value)
		}
		if fn, ok := c.lookupCallable(d.Value); ok {
			return c.invokeCallable(fn, nil)
		}
		if typ, ok := c.typeByName[d.Value]; ok {
			res, err := c.resolveClass(typ, nil, DefaultMethodSelection, Singleton)
			if err != nil {
				return nil, err
			}
			return res.instance, nil
		}
		return nil, AttributeError{Target: d.Value, Message: "not a definition id, callable, or registered type name"}

	case InfuseNamed:
		if fn, ok := c.lookupCallable(d.Value); ok {
			return c.invokeCallable(fn, d.Arg)
		}
		if c.repo.hasDefinition(d.Value) {
			// Pass Arg as the first constructor argument via a one-shot
			// Factory-style override: resolve the definition normally and
			// let the id's own materializer decide what to do with
			// supplied-first-arg plumbing through ClassRef definitions.
			return c.resolveDefinitionWithArg(d.Value, d.Arg)
		}
		if typ, ok := c.typeByName[d.Value]; ok {
			res, err := c.resolveClass(typ, d.Arg, DefaultMethodSelection, Singleton)
			if err != nil {
				return nil, err
			}
			return res.instance, nil
		}
		return nil, AttributeError{Target: d.Value, Message: "not a callable or definition id"}
	}
	return nil, AttributeError{Target: "infuse", Message: "unknown descriptor kind"}
}

// invokeCallable resolves a global callable's parameters via
// ParameterResolver and calls it, optionally supplying arg as the
// callable's first parameter.
func (c *Container) invokeCallable(fn reflect.Value, arg any) (any, error) {
	ft := fn.Type()
	params := make([]ParamSpec, ft.NumIn())
	for i := range params {
		params[i] = ParamSpec{Type: ft.In(i)}
	}
	var overflow []any
	if arg != nil && len(params) > 0 {
		overflow = []any{arg}
	}
	args, err := c.resolveParameters("callable", nil, params, nil, overflow, nil, passConstructor)
	if err != nil {
		return nil, err
	}
	out := fn.Call(args)
	return unpackResult(out)
}
