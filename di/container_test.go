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

package di_test

import (
	"reflect"
	"testing"

	"github.com/deep-rent/infuse/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Counter struct {
	N int
}

type Engine struct {
	Serial int
}

func NewEngine(serial int) *Engine { return &Engine{Serial: serial} }

type Car struct {
	Engine *Engine
}

func NewCar(engine *Engine) *Car { return &Car{Engine: engine} }

func TestValueDef_AlwaysReturnsSameLiteral(t *testing.T) {
	c := di.New(di.WithAlias("t"))
	require.NoError(t, c.Bind("answer", di.ValueDef(42)))
	c.Lock()

	v, err := di.Get[int](c, "answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSingleton_ReferenceEquality(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("counter", di.FactoryDef(func() *Counter {
		return &Counter{}
	}, di.WithLifetime(di.Singleton))))
	c.Lock()

	a, err := di.Get[*Counter](c, "counter")
	require.NoError(t, err)
	b, err := di.Get[*Counter](c, "counter")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestTransient_NeverCaches(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("counter", di.FactoryDef(func() *Counter {
		return &Counter{}
	})))
	c.Lock()

	a, err := di.Get[*Counter](c, "counter")
	require.NoError(t, err)
	b, err := di.Get[*Counter](c, "counter")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestScoped_PerLabelAndClear(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("scoped", di.FactoryDef(func() *Counter {
		return &Counter{}
	}, di.WithLifetime(di.Scoped))))
	c.Lock()

	c.SetScope("req-1")
	a1, err := di.Get[*Counter](c, "scoped")
	require.NoError(t, err)
	a2, err := di.Get[*Counter](c, "scoped")
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	c.SetScope("req-2")
	b1, err := di.Get[*Counter](c, "scoped")
	require.NoError(t, err)
	assert.NotSame(t, a1, b1)

	c.ClearScope()
	assert.Equal(t, "root", c.GetScope())

	c.SetScope("req-2")
	b2, err := di.Get[*Counter](c, "scoped")
	require.NoError(t, err)
	assert.NotSame(t, b1, b2, "clearing the scope must evict the earlier instance")
}

func TestRegisterClass_Autowiring(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("serial", di.ValueDef(7)))
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Engine](), di.Ctor(NewEngine, "serial")))
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Car](), di.Ctor(NewCar, "engine")))
	c.Lock()

	car, err := di.Make[*Car](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	require.NotNil(t, car.Engine)
	assert.Equal(t, 7, car.Engine.Serial)
}

func TestMake_AlwaysConstructsFreshInstance(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("serial", di.ValueDef(7)))
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Engine](), di.Ctor(NewEngine, "serial")))
	c.Lock()

	a, err := di.Make[*Engine](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	b, err := di.Make[*Engine](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "Make must bypass the Singleton-style class cache on every call")

	g, err := di.Get[*Engine](c, reflect.TypeFor[*Engine]().String())
	require.NoError(t, err)
	m, err := di.Make[*Engine](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.NotSame(t, g, m, "Make must not reuse an instance a prior Get cached either")
}

func TestSupplied_OutranksDefinitionByName(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("serial", di.ValueDef(1)))
	require.NoError(t, c.RegisterClass(
		reflect.TypeFor[*Engine](),
		di.Ctor(NewEngine, "serial").WithSupplied(map[string]any{"serial": 99}),
	))
	c.Lock()

	engine, err := di.Make[*Engine](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.Equal(t, 99, engine.Serial)
}

func TestLockedError_OnMutatorsAfterLock(t *testing.T) {
	c := di.New()
	c.Lock()

	err := c.Bind("x", di.ValueDef(1))
	var locked di.LockedError
	require.ErrorAs(t, err, &locked)
}

func TestFindByTag(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("a", di.ValueDef(1, di.WithTags("math"))))
	require.NoError(t, c.Bind("b", di.ValueDef(2, di.WithTags("math", "even"))))
	require.NoError(t, c.Bind("c", di.ValueDef(3)))
	c.Lock()

	ids := c.FindByTag("math")
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
	assert.ElementsMatch(t, []string{"b"}, c.FindByTag("even"))
	assert.Empty(t, c.FindByTag("missing"))
}

type Cyclic struct {
	Other *Cyclic
}

func NewCyclic(other *Cyclic) *Cyclic { return &Cyclic{Other: other} }

func TestCircularDependency_SelfRecursion(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Cyclic](), di.Ctor(NewCyclic, "other")))
	c.Lock()

	_, err := di.Make[*Cyclic](c, di.DefaultMethodSelection)
	var cycle di.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	first := cycle.Chain

	// The in-flight set must be empty again after a failed resolution, so a
	// later resolution attempt is not spuriously reported as circular too: a
	// leaked in-flight mark would fail the second attempt at the in-flight
	// check, with a different chain.
	_, err2 := di.Make[*Cyclic](c, di.DefaultMethodSelection)
	require.ErrorAs(t, err2, &cycle)
	assert.Equal(t, first, cycle.Chain)
}

type Greeter struct {
	Name string
}

type GreeterService struct {
	Greeter Greeter `di:"infuse=greeter.name"`
}

func TestPropertyInjection_InfuseSingle(t *testing.T) {
	c := di.New()
	require.NoError(t, c.Bind("greeter.name", di.ValueDef(Greeter{Name: "Ada"})))
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*GreeterService](), di.Ctor(func() *GreeterService {
		return &GreeterService{}
	})))
	c.Lock()

	svc, err := di.Make[*GreeterService](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.Equal(t, "Ada", svc.Greeter.Name)
}

type Initializable struct {
	Initialized bool
}

func (i *Initializable) Init() string {
	i.Initialized = true
	return "ready"
}

func TestMethodInvocation_GetReturnYieldsMethodResult(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Initializable](), di.Ctor(func() *Initializable {
		return &Initializable{}
	})))
	require.NoError(t, c.RegisterMethod(reflect.TypeFor[*Initializable](), di.Method("Init", (*Initializable).Init)))
	c.Lock()

	ret, err := c.GetReturn(reflect.TypeFor[*Initializable]().String())
	require.NoError(t, err)
	assert.Equal(t, "ready", ret)
}

func TestMake_SkipMethodIgnoresPriorGetReturn(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*Initializable](), di.Ctor(func() *Initializable {
		return &Initializable{}
	})))
	require.NoError(t, c.RegisterMethod(reflect.TypeFor[*Initializable](), di.Method("Init", (*Initializable).Init)))
	c.Lock()

	_, err := c.GetReturn(reflect.TypeFor[*Initializable]().String())
	require.NoError(t, err)

	v, err := di.Make[*Initializable](c, di.SkipMethod())
	require.NoError(t, err)
	assert.False(t, v.Initialized, "SkipMethod must not honor a method invocation cached by an earlier Get/GetReturn")
}

type NeedsVariadic struct {
	Tags []string
}

func NewNeedsVariadic(tags ...string) *NeedsVariadic { return &NeedsVariadic{Tags: tags} }

func TestVariadic_EmptyOverflow(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*NeedsVariadic](), di.Ctor(NewNeedsVariadic, "tags")))
	c.Lock()

	v, err := di.Make[*NeedsVariadic](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.Empty(t, v.Tags)
}

func TestVariadic_DenseOverflow(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(
		reflect.TypeFor[*NeedsVariadic](),
		di.Ctor(NewNeedsVariadic, "tags").WithOverflow("a", "b", "c"),
	))
	c.Lock()

	v, err := di.Make[*NeedsVariadic](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Tags)
}

type Storage interface {
	Name() string
}

type diskStorage struct{}

func (diskStorage) Name() string { return "disk" }

func TestInterfaceResolution_FailsWithoutBinding(t *testing.T) {
	c := di.New()
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*diskStorage](), di.Ctor(func() *diskStorage { return &diskStorage{} })))
	c.Lock()

	_, err := c.Make(reflect.TypeFor[Storage](), di.DefaultMethodSelection)
	var irErr di.InterfaceResolutionError
	require.ErrorAs(t, err, &irErr)
}

func TestInterfaceResolution_EnvironmentBinding(t *testing.T) {
	c := di.New()
	require.NoError(t, c.BindInterfaceForEnv("prod", reflect.TypeFor[Storage](), reflect.TypeFor[*diskStorage]()))
	require.NoError(t, c.RegisterClass(reflect.TypeFor[*diskStorage](), di.Ctor(func() *diskStorage { return &diskStorage{} })))
	require.NoError(t, c.SetEnvironment("prod"))
	c.Lock()

	v, err := di.Make[Storage](c, di.DefaultMethodSelection)
	require.NoError(t, err)
	assert.Equal(t, "disk", v.Name())
}
