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

// resolveProperties implements PropertyResolver.resolve (spec.md §4.6):
// post-construction field injection via user overrides, the built-in
// Infuse struct-tag grammar, and the custom AttributeRegistry pipeline.
//
// Only exported struct fields participate — Go's reflect package cannot set
// unexported fields without unsafe tricks, so "private field injection" in
// the original maps onto ordinary exported fields here. Embedded
// (anonymous) struct fields are the Go analogue of "ancestor class" fields:
// they are recursed into but never injected themselves.
func (c *Container) resolveProperties(typ reflect.Type, meta *classMetadata, instance any) error {
	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	pop := c.repo.tracer.push("properties:" + typ.String())
	defer pop()
	return c.injectFields(typ, meta, v)
}

func (c *Container) injectFields(typ reflect.Type, meta *classMetadata, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		if field.Anonymous {
			if field.Type.Kind() == reflect.Struct && fv.CanSet() {
				if err := c.injectFields(typ, meta, fv); err != nil {
					return err
				}
			}
			continue
		}
		if !field.IsExported() || !fv.CanSet() {
			continue
		}

		if err := c.injectField(typ, meta, field, fv); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) injectField(typ reflect.Type, meta *classMetadata, field reflect.StructField, fv reflect.Value) error {
	name := field.Name

	// a. User override.
	if meta != nil {
		if v, ok := meta.properties[name]; ok {
			rv, err := coerce(v, field.Type)
			if err != nil {
				return ParameterResolutionError{Owner: typ.String(), Parameter: name, Type: field.Type}
			}
			fv.Set(rv)
			return nil
		}
	}

	tags := parseStructTag(field.Tag)

	// b. Built-in Infuse attribute, keyed under the "di" struct tag.
	if raw, ok := tags["di"]; ok {
		d, isInfuse, err := parseInfuseTag(raw)
		if err != nil {
			return err
		}
		if isInfuse {
			var value any
			if d.Kind == InfuseEmpty {
				v, err := c.resolveByDeclaredType(field.Type)
				if err != nil {
					return err
				}
				value = v
			} else {
				v, err := c.resolveInfuse(d)
				if err != nil {
					return err
				}
				value = v
			}
			rv, err := coerce(value, field.Type)
			if err != nil {
				return ParameterResolutionError{Owner: typ.String(), Parameter: name, Type: field.Type}
			}
			fv.Set(rv)
			return nil
		}
	}

	// c. Custom attributes via AttributeRegistry.
	value, produced, handled, err := c.repo.attributes.dispatch(tags, Target{
		Kind: TargetProperty, Name: name, Type: field.Type, Owner: typ,
	}, c)
	if err != nil {
		return err
	}
	if handled {
		if produced {
			rv, err := coerce(value, field.Type)
			if err != nil {
				return ParameterResolutionError{Owner: typ.String(), Parameter: name, Type: field.Type}
			}
			fv.Set(rv)
		}
		// Handled but non-injecting: default fall-through is skipped.
		return nil
	}

	// No user override and no attribute of any kind: the field is left
	// untouched. Plain untagged fields are not autowired by declared type.
	return nil
}

// resolveByDeclaredType backs an empty Infuse descriptor (struct tag
// `di:"infuse"`): resolve by the field's declared type, consulting
// definitions-by-type first and falling back to class construction,
// honoring environment overrides for interfaces.
func (c *Container) resolveByDeclaredType(t reflect.Type) (any, error) {
	if t.Kind() == reflect.Interface {
		concrete, ok := c.repo.getEnvConcrete(t)
		if !ok {
			return nil, InterfaceResolutionError{Interface: t}
		}
		if !concrete.Implements(t) {
			return nil, InterfaceImplementationError{Interface: t, Concrete: concrete}
		}
		res, err := c.resolveClass(concrete, nil, DefaultMethodSelection, Singleton)
		if err != nil {
			return nil, err
		}
		return res.instance, nil
	}
	if id := typeIdentifier(t); c.repo.hasDefinition(id) {
		return c.resolveDefinition(id)
	}
	if isReflectable(t) {
		res, err := c.resolveClass(t, nil, DefaultMethodSelection, Singleton)
		if err != nil {
			return nil, err
		}
		return res.instance, nil
	}
	return nil, AttributeError{Target: t.String(), Message: "cannot infuse by declared type: not a definition and not a reflectable class"}
}
