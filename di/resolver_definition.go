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

// resolveDefinition implements DefinitionResolver.resolve (spec.md §4.3)
// for an identifier that is known to be bound. Container.Get/GetReturn are
// responsible for falling back to ClassResolver when the identifier is not
// a bound definition.
func (c *Container) resolveDefinition(id string) (any, error) {
	cleanup, err := c.repo.enter("id:" + id)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pop := c.repo.tracer.push("definition:" + id)
	defer pop()

	def, ok := c.repo.getDefinition(id)
	if !ok {
		return nil, AttributeError{Target: id, Message: "no definition bound for this identifier"}
	}

	switch def.lifetime {
	case Singleton:
		if v, ok := c.repo.getResolved(id); ok {
			return v, nil
		}
		materialize := func() (any, error) {
			if v, ok := c.repo.getResolved(id); ok {
				return v, nil
			}
			v, err := c.materialize(def, nil)
			if err != nil {
				return nil, err
			}
			c.repo.setResolved(id, v)
			return v, nil
		}
		if c.repo.pool != nil {
			return c.repo.pool.Get(c.repo.makeCacheKey("def:"+encodeIDForCacheKey(id)), materialize)
		}
		return materialize()

	case Scoped:
		if v, ok := c.repo.getScoped(id); ok {
			return v, nil
		}
		v, err := c.materialize(def, nil)
		if err != nil {
			return nil, err
		}
		c.repo.setScoped(id, v)
		return v, nil

	default: // Transient
		return c.materialize(def, nil)
	}
}

// resolveDefinitionWithArg materializes a bound definition with a
// one-off first-constructor-argument override, used by the InfuseNamed
// resolveInfuse path (spec.md §4.4). It bypasses every cache layer: the
// override makes the artifact specific to this call site, so it must never
// be reused as the identifier's cached Singleton/Scoped value.
func (c *Container) resolveDefinitionWithArg(id string, arg any) (any, error) {
	def, ok := c.repo.getDefinition(id)
	if !ok {
		return nil, AttributeError{Target: id, Message: "no definition bound for this identifier"}
	}
	// Materialize as Transient so class-backed definitions skip the
	// type-keyed class cache too.
	def.lifetime = Transient
	return c.materialize(def, arg)
}

// materialize dispatches on the Definition's kind (spec.md §4.3 step 6).
func (c *Container) materialize(def Definition, firstArg any) (any, error) {
	switch def.kind {
	case kindValue:
		return def.value, nil

	case kindFactory:
		return c.invokeCallable(def.factory, firstArg)

	case kindClassRef:
		res, err := c.resolveClass(def.typ, firstArg, DefaultMethodSelection, def.lifetime)
		if err != nil {
			return nil, err
		}
		return res.instance, nil

	case kindClassMethodRef:
		sel := DefaultMethodSelection
		if def.hasMethod {
			sel = ExplicitMethod(def.method)
		}
		res, err := c.resolveClass(def.typ, firstArg, sel, def.lifetime)
		if err != nil {
			return nil, err
		}
		if def.hasMethod {
			return res.returned, nil
		}
		return res.instance, nil

	default:
		return nil, AttributeError{Target: def.typ.String(), Message: "unknown definition kind"}
	}
}
