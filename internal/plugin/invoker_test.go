package plugin

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type invokerFixturePlugin struct{ Base }

func (f *invokerFixturePlugin) Describe() []HandlerDescriptor { return nil }

func newFixtureBundle(handler HandlerDescriptor) bundle {
	return bundle{plugin: newActivePlugin(&invokerFixturePlugin{}), handler: handler}
}

func TestResolveParamNamedPrefersScopeOverGlobal(t *testing.T) {
	t.Parallel()

	scope, err := NewScopedDependencyManager(mustDep(t, "x", 1))
	require.NoError(t, err)
	global := NewDependencyManager()
	_, err = global.AddNamed("x", 2)
	require.NoError(t, err)

	v, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0), DepName: "x"}, scope, global)
	require.NoError(t, err)
	require.Equal(t, 1, v.Interface())
}

func TestResolveParamNamedFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	scope := EmptyDependencyManager()
	global := NewDependencyManager()
	_, err := global.AddNamed("x", 2)
	require.NoError(t, err)

	v, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0), DepName: "x"}, scope, global)
	require.NoError(t, err)
	require.Equal(t, 2, v.Interface())
}

func TestResolveParamNamedMismatchNeverFallsBackToUnnamed(t *testing.T) {
	t.Parallel()

	scope, err := NewScopedDependencyManager(mustDep(t, "x", "not an int"))
	require.NoError(t, err)
	global := NewDependencyManager()
	_, err = global.AddNamed("y", 99)
	require.NoError(t, err)

	_, err = resolveParam(ParamSpec{Type: reflect.TypeOf(0), DepName: "x"}, scope, global)
	require.ErrorAs(t, err, new(DepUnexpectedClass))
}

func TestResolveParamNamedNotFound(t *testing.T) {
	t.Parallel()

	_, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0), DepName: "missing"}, EmptyDependencyManager(), NewDependencyManager())
	require.ErrorAs(t, err, new(DepNameNotFound))
}

func TestResolveParamUnnamedLastMatchWins(t *testing.T) {
	t.Parallel()

	scope := NewDependencyManager()
	_, err := scope.AddNamed("first", 1)
	require.NoError(t, err)
	_, err = scope.AddNamed("second", 2)
	require.NoError(t, err)

	v, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0)}, scope, NewDependencyManager())
	require.NoError(t, err)
	require.Equal(t, 2, v.Interface())
}

func TestResolveParamUnnamedFallsBackToGlobalOnlyWhenScopeEmpty(t *testing.T) {
	t.Parallel()

	scope := EmptyDependencyManager()
	global := NewDependencyManager()
	_, err := global.AddNamed("g", 7)
	require.NoError(t, err)

	v, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0)}, scope, global)
	require.NoError(t, err)
	require.Equal(t, 7, v.Interface())
}

func TestResolveParamUnnamedNotFound(t *testing.T) {
	t.Parallel()

	_, err := resolveParam(ParamSpec{Type: reflect.TypeOf(0)}, EmptyDependencyManager(), NewDependencyManager())
	require.ErrorAs(t, err, new(DepClassNotFound))
}

func TestTryInvokeConvertsPanicToLoadFailure(t *testing.T) {
	t.Parallel()

	h := Init(func() error { panic("boom") })
	_, err := tryInvoke(context.Background(), newFixtureBundle(h), EmptyDependencyManager(), NewDependencyManager())
	require.ErrorAs(t, err, new(LoadFailure))
}

func TestTryInvokeReturnsNonErrorValues(t *testing.T) {
	t.Parallel()

	h := Init(func() (int, error) { return 42, nil })
	values, err := tryInvoke(context.Background(), newFixtureBundle(h), EmptyDependencyManager(), NewDependencyManager())
	require.NoError(t, err)
	require.Equal(t, []any{42}, values)
}

func TestTryInvokeWrapsCallError(t *testing.T) {
	t.Parallel()

	h := Init(func() error { return DepNameNotFound{Name: "z"} })
	_, err := tryInvoke(context.Background(), newFixtureBundle(h), EmptyDependencyManager(), NewDependencyManager())
	require.ErrorAs(t, err, new(LoadFailure))
}

func TestRunFixedPointStallsAndCommitsLastFailure(t *testing.T) {
	t.Parallel()

	h := Init(func(missing int) error { return nil }, Param(0, "missing"))
	results := runFixedPoint(context.Background(), []bundle{newFixtureBundle(h)}, nil, NewDependencyManager(), nil)

	require.Len(t, results, 1)
	require.False(t, results[0].Success())
	require.ErrorAs(t, results[0].Err, new(DepNameNotFound))
}

func TestRunFixedPointConvergesAcrossRoundsAndKeepsIndexStable(t *testing.T) {
	t.Parallel()

	global := NewDependencyManager()

	register := Init(func() error {
		_, err := global.AddNamed("thing", 99)
		return err
	})
	consume := Init(func(thing int) error { return nil }, Param(0, "thing"))

	// consume (index 0) is attempted before register (index 1) has run,
	// so it must fail its first round and only succeed once register's
	// result has landed in global.
	bundles := []bundle{newFixtureBundle(consume), newFixtureBundle(register)}
	results := runFixedPoint(context.Background(), bundles, nil, global, nil)

	require.Len(t, results, 2)
	require.True(t, results[0].Success(), "consume should eventually converge: %v", results[0].Err)
	require.True(t, results[1].Success())
	require.Equal(t, consume.FnName, results[0].HandlerName)
	require.Equal(t, register.FnName, results[1].HandlerName)
}

func mustDep(t *testing.T, name string, value any) Dependency {
	t.Helper()
	d, err := NewDependency(name, reflect.TypeOf(value), value)
	require.NoError(t, err)
	return d
}
