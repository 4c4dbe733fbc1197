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
	"log/slog"
	"reflect"
	"sync"

	"github.com/deep-rent/infuse/diag"
	"github.com/deep-rent/infuse/ids"
)

// Container is the public resolution core described by this package: a
// Repository of Definitions and class metadata, plus the ParameterResolver /
// PropertyResolver / ClassResolver / DefinitionResolver machinery that turns
// them into instances.
//
// A Container is built with New, configured through its setup methods, and
// then locked with Lock before serving resolutions. Configuration methods
// are not safe for concurrent use; once locked, Get/GetReturn/Call/Make/
// FindByTag/Has are safe to call from multiple goroutines concurrently.
type Container struct {
	repo *repository

	namesMu    sync.Mutex
	typeByName map[string]reflect.Type
	callables  map[string]reflect.Value
}

// config holds the options New assembles before constructing a Container.
type config struct {
	alias string
	log   *slog.Logger
	trace TraceLevel
}

// Option configures a Container at construction time.
type Option func(*config)

// WithAlias names the container, namespacing its CachePool keys so multiple
// containers in one process never collide on a shared backing store.
func WithAlias(alias string) Option {
	return func(c *config) { c.alias = alias }
}

// WithLogger sets the diagnostic logger used by the trace recorder. The
// default is a diag.New() text logger writing to os.Stdout at info level.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithTrace sets the Tracer's detail level. The default is TraceOff.
func WithTrace(level TraceLevel) Option {
	return func(c *config) { c.trace = level }
}

// New creates an unlocked Container ready for Bind/RegisterClass/... calls.
//
// Example:
//
//	c := di.New(di.WithAlias("app"))
//	c.Bind("cfg.retries", di.ValueDef(3))
//	c.Lock()
//	n, err := di.Get[int](c, "cfg.retries")
func New(opts ...Option) *Container {
	cfg := config{log: diag.New(), trace: TraceOff}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.alias == "" {
		cfg.alias = ids.New().String()
	}
	return &Container{
		repo:       newRepository(cfg.alias, cfg.log, cfg.trace),
		typeByName: make(map[string]reflect.Type),
		callables:  make(map[string]reflect.Value),
	}
}

// Alias returns the container's configured alias.
func (c *Container) Alias() string { return c.repo.alias }

// --- binding / registration -------------------------------------------------

// Bind registers a Definition under id. Returns LockedError once the
// container is locked.
func (c *Container) Bind(id string, def Definition) error {
	return c.repo.setDefinition(id, def)
}

// AddDefinitions binds every entry of defs in map iteration order (Go maps
// have no stable order; callers needing deterministic bind order should call
// Bind directly in a loop over a slice instead).
func (c *Container) AddDefinitions(defs map[string]Definition) error {
	for id, def := range defs {
		if err := c.Bind(id, def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterClass attaches constructor metadata to typ, recorded via
// reflect.TypeFor[T]() by the caller (or reflect.TypeOf on a value/pointer).
// It also indexes typ by its string form in the container's typeByName
// table, the substitute for the original's resolve-class-by-name-string
// behavior (DESIGN.md, "Resolving X when X is not a bound definition").
func (c *Container) RegisterClass(typ reflect.Type, ctor ConstructorSpec) error {
	if err := c.repo.registerClass(typ, ctor); err != nil {
		return err
	}
	c.namesMu.Lock()
	c.typeByName[typ.String()] = typ
	c.namesMu.Unlock()
	return nil
}

// RegisterMethod attaches a post-construction method to typ, overriding the
// container-wide default method for instances of that type.
func (c *Container) RegisterMethod(typ reflect.Type, m MethodSpec) error {
	return c.repo.registerMethod(typ, m)
}

// RegisterProperty attaches user-supplied property overrides to typ, keyed
// by exported field name. These take precedence over any Infuse tag or
// custom attribute on the same field.
func (c *Container) RegisterProperty(typ reflect.Type, values map[string]any) error {
	return c.repo.registerProperty(typ, values)
}

// RegisterCallable exposes fn under name for the built-in Infuse family
// (InfuseSingle/InfuseNamed resolution, spec.md §4.4), the Go substitute for
// resolving an arbitrary global function by its source-level name.
func (c *Container) RegisterCallable(name string, fn any) error {
	if c.repo.isLocked() {
		return LockedError{Op: "RegisterCallable(" + name + ")"}
	}
	c.namesMu.Lock()
	c.callables[name] = reflect.ValueOf(fn)
	c.namesMu.Unlock()
	return nil
}

func (c *Container) lookupCallable(name string) (reflect.Value, bool) {
	c.namesMu.Lock()
	defer c.namesMu.Unlock()
	fn, ok := c.callables[name]
	return fn, ok
}

// BindInterfaceForEnv registers iface -> concrete as the binding consulted
// whenever the container's environment (set via SetEnvironment) equals env.
func (c *Container) BindInterfaceForEnv(env string, iface, concrete reflect.Type) error {
	return c.repo.bindInterfaceForEnv(env, iface, concrete)
}

// SetEnvironment sets the label consulted by environment-conditional
// interface bindings. An empty label (the default) disables them entirely.
func (c *Container) SetEnvironment(env string) error {
	return c.repo.setEnvironment(env)
}

// SetOptions sets the container-wide default post-construction method name
// consulted when a type registers neither a MethodSpec nor a callOn
// override. The lazyLoading, propertyAttributes and methodAttributes flags
// are stored on the container but no resolution path reads them: property
// attributes and method-level Infuse descriptors are always processed.
func (c *Container) SetOptions(lazyLoading, propertyAttributes, methodAttributes bool, defaultMethod string) error {
	return c.repo.setOptions(lazyLoading, propertyAttributes, methodAttributes, defaultMethod)
}

// EnableDefinitionCache installs a CachePool consulted by Singleton
// definition resolution when the in-process Singleton cache misses
// (spec.md §4.1, §6).
func (c *Container) EnableDefinitionCache(pool CachePool) error {
	return c.repo.enableCachePool(pool)
}

// Provider bundles a set of bindings for Container.Import, the extension
// point external packages (such as di/provider) use to contribute
// Definitions without the container needing to know how they were produced.
type Provider interface {
	Provide(c *Container) error
}

// Import runs p against c, giving it the chance to Bind/RegisterClass/...
// before the container is locked.
func (c *Container) Import(p Provider) error {
	return p.Provide(c)
}

// RegisterAttribute extends the custom AttributeRegistry pipeline with a
// resolver for the given struct-tag key.
func (c *Container) RegisterAttribute(tagKey string, resolver AttributeResolver) {
	c.repo.attributes.Register(tagKey, resolver)
}

// Lock freezes the container's configuration. Every mutator above that
// returns an error returns LockedError afterward; RegisterAttribute has no
// error result and performs no lock check, so it still extends the registry
// after Lock. Resolution methods remain usable indefinitely.
func (c *Container) Lock() { c.repo.lock() }

// Locked reports whether Lock has been called.
func (c *Container) Locked() bool { return c.repo.isLocked() }

// --- resolution --------------------------------------------------------------

// Has reports whether id is a bound Definition.
func (c *Container) Has(id string) bool { return c.repo.hasDefinition(id) }

// FindByTag returns every identifier bound with a Definition carrying tag,
// in no particular order.
func (c *Container) FindByTag(tag string) []string { return c.repo.findByTag(tag) }

// Get resolves id: a bound Definition takes precedence; otherwise id is
// treated as a registered type name and ClassResolver is invoked directly
// (spec.md §2's "otherwise ClassResolver is invoked directly", realized via
// the typeByName table — see DESIGN.md).
func (c *Container) Get(id string) (any, error) {
	if c.repo.hasDefinition(id) {
		v, err := c.resolveDefinition(id)
		c.repo.tracer.snapshot(id)
		return v, err
	}
	c.namesMu.Lock()
	typ, ok := c.typeByName[id]
	c.namesMu.Unlock()
	if !ok {
		return nil, AttributeError{Target: id, Message: "no definition bound and no class registered under this name"}
	}
	res, err := c.resolveClass(typ, nil, DefaultMethodSelection, Singleton)
	c.repo.tracer.snapshot(id)
	if err != nil {
		return nil, err
	}
	return res.instance, nil
}

// GetReturn resolves id the same way as Get, but for a class-backed
// identifier returns the post-construction method's return value instead of
// the instance, failing if no method produced a return value. For a bound
// Value or Factory definition it returns the definition's value, as Get does.
func (c *Container) GetReturn(id string) (any, error) {
	var typ reflect.Type
	lifetime := Singleton
	sel := DefaultMethodSelection
	if c.repo.hasDefinition(id) {
		def, _ := c.repo.getDefinition(id)
		if def.kind != kindClassRef && def.kind != kindClassMethodRef {
			v, err := c.resolveDefinition(id)
			c.repo.tracer.snapshot(id)
			return v, err
		}
		typ = def.typ
		lifetime = def.lifetime
		if def.kind == kindClassMethodRef && def.hasMethod {
			sel = ExplicitMethod(def.method)
		}
	} else {
		c.namesMu.Lock()
		t, ok := c.typeByName[id]
		c.namesMu.Unlock()
		if !ok {
			return nil, AttributeError{Target: id, Message: "no definition bound and no class registered under this name"}
		}
		typ = t
	}
	res, err := c.resolveClass(typ, nil, sel, lifetime)
	c.repo.tracer.snapshot(id)
	if err != nil {
		return nil, err
	}
	if !res.hasReturned {
		return nil, AttributeError{Target: id, Message: "no post-construction method produced a return value"}
	}
	return res.returned, nil
}

// Make constructs typ directly via ClassResolver, bypassing the definition
// table entirely — the Go analogue of the original's "make by class name"
// entry point, taking a compile-time reflect.Type instead of a string.
//
// spec.md §6: "make(type, …) → always constructs a fresh instance (bypasses
// the Singleton cache)". Transient is passed as resolveClass's lifetime
// argument purely to get its "never caches" behavior (cacheable ==
// lifetime == Singleton) on both the read and the write side — Make has no
// Definition of its own and is not claiming the constructed instance is
// Transient-lifetime in any bookkeeping sense.
func (c *Container) Make(typ reflect.Type, sel MethodSelector) (any, error) {
	res, err := c.resolveClass(typ, nil, sel, Transient)
	if err != nil {
		return nil, err
	}
	return res.instance, nil
}

// Call invokes fn (a plain Go function, not a method) with its parameters
// resolved through ParameterResolver.
func (c *Container) Call(fn any) (any, error) {
	return c.invokeCallable(reflect.ValueOf(fn), nil)
}

// --- scope --------------------------------------------------------------------

// SetScope changes the label consulted by Scoped lifetime caching.
func (c *Container) SetScope(label string) { c.repo.setScope(label) }

// GetScope returns the current scope label.
func (c *Container) GetScope() string { return c.repo.getScope() }

// ClearScope evicts every Scoped entry cached under the current scope label
// and resets the cursor to "root".
func (c *Container) ClearScope() { c.repo.clearScope() }

// Clear evicts every resolved cache (Singleton, class, Scoped), resetting
// reference identity for subsequent resolutions. It does not affect bound
// Definitions, class metadata, or the locked state.
func (c *Container) Clear() { c.repo.clearAll() }

// Trace returns the final resolution-step sequence recorded for root's most
// recent top-level Get/GetReturn call, or nil if tracing is off or root was
// never resolved. Make does not record a trace.
func (c *Container) Trace(root string) []string { return c.repo.tracer.Trace(root) }

// --- generic helpers -----------------------------------------------------------

// Get resolves id and type-asserts the result to T, the idiomatic entry
// point for callers that already know the expected static type.
func Get[T any](c *Container, id string) (T, error) {
	var zero T
	v, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, ParameterResolutionError{Owner: id, Parameter: "<result>", Type: reflect.TypeFor[T]()}
	}
	return t, nil
}

// Make constructs a T directly via ClassResolver, bypassing the definition
// table, and type-asserts the result.
func Make[T any](c *Container, sel MethodSelector) (T, error) {
	var zero T
	v, err := c.Make(reflect.TypeFor[T](), sel)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, ParameterResolutionError{Owner: reflect.TypeFor[T]().String(), Parameter: "<result>", Type: reflect.TypeFor[T]()}
	}
	return t, nil
}

// Call invokes fn with its parameters resolved through ParameterResolver and
// type-asserts its result to T.
func Call[T any](c *Container, fn any) (T, error) {
	var zero T
	v, err := c.Call(fn)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, ParameterResolutionError{Owner: "callable", Parameter: "<result>", Type: reflect.TypeFor[T]()}
	}
	return t, nil
}
