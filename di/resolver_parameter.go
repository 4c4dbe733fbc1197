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

// passKind distinguishes a constructor parameter pass from a method
// parameter pass; only the latter consults method-level Infuse descriptors
// (spec.md §4.5 step "Method attributes (method pass only)").
type passKind uint8

const (
	passConstructor passKind = iota
	passMethod
)

// resolveParameters implements ParameterResolver.resolve (spec.md §4.5): a
// three-phase algorithm that turns a declared parameter list into an
// ordered list of reflect.Values ready for reflect.Value.Call.
//
// Precedence across the whole parameter (spec.md §8 testable property 4,
// taken as authoritative over the narrative step order in spec.md §4.5 —
// see DESIGN.md "Open Question resolutions"):
//
//	user-supplied-by-name > definition (by name, then by type) >
//	reflectable class > method-level Infuse > parameter-level Infuse >
//	declared default > nil-if-nilable > failure
//
// ownerLabel identifies the owning signature for error messages (e.g.
// "pkg.Service.New" or "pkg.Service.Init").
func (c *Container) resolveParameters(
	ownerLabel string,
	ownerType reflect.Type,
	params []ParamSpec,
	supplied map[string]any,
	overflow []any,
	methodInfuse map[string]InfuseDescriptor,
	kind passKind,
) ([]reflect.Value, error) {
	pop := c.repo.tracer.push("parameters:" + ownerLabel)
	defer pop()

	n := len(params)
	out := make([]reflect.Value, n)
	resolved := make([]bool, n)
	usedClassTypes := make(map[reflect.Type]bool)
	var deferred []int

	for i, p := range params {
		if p.Variadic() {
			break
		}

		// 1. user-supplied by name.
		if v, ok := supplied[p.Name]; ok && p.Name != "" {
			rv, err := coerce(v, p.Type)
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			continue
		}

		// 2. by-name definition lookup.
		if p.Name != "" && c.repo.hasDefinition(p.Name) {
			v, err := c.resolveDefinition(p.Name)
			if err != nil {
				return nil, err
			}
			rv, err := coerce(v, p.Type)
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			continue
		}

		// 3. by-type definition lookup.
		if p.Type != nil {
			if typeID := typeIdentifier(p.Type); c.repo.hasDefinition(typeID) {
				v, err := c.resolveDefinition(typeID)
				if err != nil {
					return nil, err
				}
				rv, err := coerce(v, p.Type)
				if err != nil {
					return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
				}
				out[i], resolved[i] = rv, true
				continue
			}
		}

		// 4. reflectable class.
		if isReflectable(p.Type) {
			if kind == passConstructor && ownerType != nil && p.Type == ownerType {
				return nil, CircularDependencyError{Chain: []string{ownerType.String(), p.Type.String()}}
			}
			if usedClassTypes[p.Type] {
				return nil, MultipleInstancesError{Owner: ownerLabel, Type: p.Type}
			}
			var arg any
			if p.Name != "" {
				arg = supplied[p.Name]
			}
			result, err := c.resolveClass(p.Type, firstArgSupply(arg, p.Name), DefaultMethodSelection, Singleton)
			if err != nil {
				return nil, err
			}
			rv, err := coerce(result.instance, p.Type)
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			usedClassTypes[p.Type] = true
			continue
		}

		// 5. method-level Infuse descriptor (method pass only).
		if kind == passMethod && methodInfuse != nil && p.Name != "" {
			if d, ok := methodInfuse[p.Name]; ok {
				v, err := c.resolveInfuse(d)
				if err != nil {
					return nil, err
				}
				rv, err := coerce(v, p.Type)
				if err != nil {
					return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
				}
				out[i], resolved[i] = rv, true
				continue
			}
		}

		deferred = append(deferred, i)
	}

	// Phase B: positional/default pass over the deferred parameters.
	overflowIdx := 0
	for _, i := range deferred {
		p := params[i]

		if overflowIdx < len(overflow) {
			rv, err := coerce(overflow[overflowIdx], p.Type)
			overflowIdx++
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			continue
		}

		if p.Infuse != nil {
			v, err := c.resolveInfuse(*p.Infuse)
			if err != nil {
				return nil, err
			}
			rv, err := coerce(v, p.Type)
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			continue
		}

		if p.HasDefault {
			rv, err := coerce(p.Default, p.Type)
			if err != nil {
				return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
			}
			out[i], resolved[i] = rv, true
			continue
		}

		if p.Nullable || isNilable(p.Type) {
			out[i], resolved[i] = reflect.Zero(p.Type), true
			continue
		}

		return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
	}

	// Phase C: variadic tail.
	if n > 0 && params[n-1].Variadic() {
		tail, err := c.resolveVariadic(ownerLabel, params[n-1], supplied, overflow[overflowIdx:])
		if err != nil {
			return nil, err
		}
		out = append(out[:n-1], tail...)
	}

	return out, nil
}

// resolveVariadic implements Phase C of spec.md §4.5 for the two cases that
// have a faithful Go analogue: an empty overflow set yields an empty
// collection, and a dense numeric overflow sequence preserves declaration
// order. The PHP original's third case — a caller-supplied array mixing
// numeric and string keys for the variadic tail — has no Go equivalent,
// since a Go variadic parameter is an ordered slice with no per-element key;
// see DESIGN.md's Open Question resolutions for why this is a reduction
// rather than an omission. supplied is accepted for symmetry with the rest
// of ParameterResolver's signature but is not consulted here.
func (c *Container) resolveVariadic(ownerLabel string, p ParamSpec, supplied map[string]any, numeric []any) ([]reflect.Value, error) {
	out := make([]reflect.Value, 0, len(numeric))
	for _, v := range numeric {
		rv, err := coerce(v, p.Type)
		if err != nil {
			return nil, ParameterResolutionError{Owner: ownerLabel, Parameter: p.Name, Type: p.Type}
		}
		out = append(out, rv)
	}
	return out, nil
}

// Variadic reports whether this ParamSpec describes the variadic tail
// parameter of its owning signature. Ctor and Method set it automatically
// from the underlying reflect.Type; Type is the element type of the
// variadic slice in that case, not the slice type itself.
func (p ParamSpec) Variadic() bool { return p.variadic }
