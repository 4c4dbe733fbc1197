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

// Package di is a reflection-driven dependency resolution core: bind
// identifiers to Definitions (literal values, factories, or constructed
// classes), register class metadata for autowiring, and resolve a
// dependency graph through Singleton, Transient, or Scoped lifetimes.
//
// The core concepts are:
//   - Definition: a recipe for producing a value under an identifier
//     (ValueDef, FactoryDef, ClassRefDef, ClassMethodRefDef).
//   - Container: the repository of Definitions and class metadata, and the
//     entry point for resolution (Get, GetReturn, Make, Call).
//   - ConstructorSpec / MethodSpec: explicit parameter metadata attached to
//     a type via RegisterClass / RegisterMethod, since Go retains no
//     runtime name information for function parameters the way it does for
//     struct fields.
//
// # Usage
//
// A minimal container binding a literal value and an autowired class:
//
//	type Clock struct{}
//
//	type Greeter struct {
//	  Prefix string
//	  Clock  *Clock `di:"infuse"`
//	}
//
//	func NewGreeter(prefix string) *Greeter { return &Greeter{Prefix: prefix} }
//
//	c := di.New(di.WithAlias("app"))
//	c.Bind("greeting.prefix", di.ValueDef("hello"))
//	c.RegisterClass(reflect.TypeFor[*Greeter](), di.Ctor(NewGreeter, "greeting.prefix"))
//	c.Lock()
//
//	greeter, err := di.Get[*Greeter](c, reflect.TypeFor[*Greeter]().String())
//
// Binding a type by value and asking for it back by its registered class
// name mirrors the original system's resolve-by-class-name entry point; Go
// has no runtime registry mapping an arbitrary string to a type, so
// RegisterClass populates that table automatically under the type's
// reflect.Type.String() form, and the generic Get/Make/Call helpers resolve
// by a compile-time type directly instead when one is available.
//
// Lifetimes govern caching. A Singleton resolves once and is shared forever;
// a Transient resolves fresh every time; a Scoped identifier resolves once
// per scope label, which the application advances and clears around request
// or job boundaries with Container.SetScope and Container.ClearScope.
//
//	c.Bind("request.id", di.FactoryDef(newRequestID, di.WithLifetime(di.Scoped)))
//	c.SetScope("req-42")
//	id, _ := c.Get("request.id") // materialized once for "req-42"
//	c.ClearScope()               // evicts it, resets scope to "root"
package di
