package plugin

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDependencyManagerAddGeneratesName(t *testing.T) {
	t.Parallel()

	m := NewDependencyManager()
	d := m.Add(42)
	require.NotEmpty(t, d.Name)

	found, ok := m.Find(d.Name)
	require.True(t, ok)
	require.Equal(t, 42, found.Value)
}

func TestDependencyManagerAddNamedRejectsDuplicate(t *testing.T) {
	t.Parallel()

	m := NewDependencyManager()
	_, err := m.AddNamed("x", 1)
	require.NoError(t, err)

	_, err = m.AddNamed("x", 2)
	require.ErrorAs(t, err, new(DuplicateDependency))
}

func TestDependencyManagerFindByValueClassLastMatchWins(t *testing.T) {
	t.Parallel()

	m := NewDependencyManager()
	_, err := m.AddNamed("a", 1)
	require.NoError(t, err)
	_, err = m.AddNamed("b", 2)
	require.NoError(t, err)

	matches := m.FindByValueClass(reflect.TypeOf(0))
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].Name)
	require.Equal(t, "b", matches[1].Name)
}

func TestDependencyManagerRemoveByType(t *testing.T) {
	t.Parallel()

	m := NewDependencyManager()
	_, err := m.AddNamed("a", 1)
	require.NoError(t, err)
	_, err = m.AddNamed("b", "not an int")
	require.NoError(t, err)

	removed := m.RemoveByType(reflect.TypeOf(0))
	require.Len(t, removed, 1)
	require.Equal(t, "a", removed[0].Name)

	_, ok := m.Find("a")
	require.False(t, ok)
	_, ok = m.Find("b")
	require.True(t, ok)
}

func TestNewScopedDependencyManagerRejectsDuplicates(t *testing.T) {
	t.Parallel()

	d1, err := NewDependency("x", reflect.TypeOf(0), 1)
	require.NoError(t, err)
	d2, err := NewDependency("x", reflect.TypeOf(0), 2)
	require.NoError(t, err)

	_, err = NewScopedDependencyManager(d1, d2)
	require.ErrorAs(t, err, new(DuplicateDependency))
}

func TestEmptyDependencyManagerNoOpsMutations(t *testing.T) {
	t.Parallel()

	m := EmptyDependencyManager()
	require.NoError(t, m.AddDependency(Dependency{Name: "x", AbstractType: reflect.TypeOf(0), Value: 1}))

	_, ok := m.Find("x")
	require.False(t, ok)
	require.Empty(t, m.FindByType(reflect.TypeOf(0)))
	require.Empty(t, m.ToSlice())

	_, ok = m.Remove("x")
	require.False(t, ok)
}

func TestDependencyManagerToSlicePreservesOrder(t *testing.T) {
	t.Parallel()

	m := NewDependencyManager()
	_, err := m.AddNamed("first", 1)
	require.NoError(t, err)
	_, err = m.AddNamed("second", 2)
	require.NoError(t, err)

	slice := m.ToSlice()
	require.Len(t, slice, 2)
	require.Equal(t, "first", slice[0].Name)
	require.Equal(t, "second", slice[1].Name)
}
