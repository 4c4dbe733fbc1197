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
	"strings"
)

// LockedError is returned by every Repository mutator once the container has
// been locked via Container.Lock. Read paths remain functional after a lock.
//
// Example:
//
//	c.Lock()
//	err := c.Bind("cfg.n", di.ValueDef(7))
//	var locked di.LockedError
//	if errors.As(err, &locked) {
//	  fmt.Println("cannot mutate", locked.Op)
//	}
type LockedError struct {
	// Op names the mutator that was attempted, e.g. "Bind" or "SetEnvironment".
	Op string
}

func (e LockedError) Error() string {
	return fmt.Sprintf("di: container is locked: cannot %s", e.Op)
}

// NotLockedError is returned by operations that require a fully configured
// container, such as Warm, when the caller has not yet called Container.Lock.
type NotLockedError struct {
	// Op names the operation that was attempted, e.g. "Warm".
	Op string
}

func (e NotLockedError) Error() string {
	return fmt.Sprintf("di: container is not locked: cannot %s", e.Op)
}

// CircularDependencyError is returned when resolving an identifier would
// re-enter a resolution already in flight on the current chain.
//
// Chain holds the keys that were in flight when the cycle was detected, in
// no particular order, followed by the key that re-entered. For a
// constructor parameter typed as its own declaring type, Chain is that type
// name twice.
type CircularDependencyError struct {
	Chain []string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("di: circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// NotInstantiableError is returned when ClassResolver is asked to construct
// a type that is neither a struct nor a pointer to a struct. An interface
// with no concrete binding yields InterfaceResolutionError instead.
type NotInstantiableError struct {
	Type reflect.Type
}

func (e NotInstantiableError) Error() string {
	return fmt.Sprintf("di: type %s is not instantiable", e.Type)
}

// InterfaceResolutionError is returned when an interface type is requested
// but no environment override, definition, or supplied concrete exists for it.
type InterfaceResolutionError struct {
	Interface reflect.Type
}

func (e InterfaceResolutionError) Error() string {
	return fmt.Sprintf("di: no concrete binding for interface %s", e.Interface)
}

// InterfaceImplementationError is returned when a concrete type bound or
// supplied for an interface does not actually implement it.
type InterfaceImplementationError struct {
	Interface reflect.Type
	Concrete  reflect.Type
}

func (e InterfaceImplementationError) Error() string {
	return fmt.Sprintf("di: %s does not implement %s", e.Concrete, e.Interface)
}

// MultipleInstancesError is returned when a single parameter list would
// inject two distinct reflectable-class parameters of the same type, which
// makes the dependency graph ambiguous.
type MultipleInstancesError struct {
	Owner string
	Type  reflect.Type
}

func (e MultipleInstancesError) Error() string {
	return fmt.Sprintf("di: %s: multiple parameters of type %s in one signature", e.Owner, e.Type)
}

// ParameterResolutionError is returned when a required parameter cannot be
// satisfied from any source (user-supplied, definition, reflectable class,
// attribute, default) and its type does not admit nil.
type ParameterResolutionError struct {
	Owner     string
	Parameter string
	Type      reflect.Type
}

func (e ParameterResolutionError) Error() string {
	return fmt.Sprintf(
		"di: %s: cannot resolve parameter %q of type %s",
		e.Owner, e.Parameter, e.Type,
	)
}

// AttributeError is returned when a built-in Infuse descriptor is malformed
// or refers to an unknown descriptor kind.
type AttributeError struct {
	Target  string
	Message string
}

func (e AttributeError) Error() string {
	return fmt.Sprintf("di: %s: %s", e.Target, e.Message)
}

// ResolutionFailedError pairs an identifier or type with the error that
// occurred while resolving it. The resolvers in this package return errors
// from factories, constructors and post-construction methods unwrapped; none
// of them constructs a ResolutionFailedError.
type ResolutionFailedError struct {
	ID    string
	Cause error
}

func (e ResolutionFailedError) Error() string {
	return fmt.Sprintf("di: resolving %q: %v", e.ID, e.Cause)
}

func (e ResolutionFailedError) Unwrap() error {
	return e.Cause
}
