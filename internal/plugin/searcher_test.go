package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func collectNames(t *testing.T, provider MetadataProvider) []string {
	t.Helper()
	var names []string
	for c := range Search(context.Background(), provider) {
		names = append(names, c.Name)
	}
	return names
}

func TestSearchRequiresConcreteness(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Abstract", IsConcrete: false, Interfaces: []string{marker}},
		ClassInfo{Name: "a.Concrete", IsConcrete: true, Interfaces: []string{marker}},
	)

	names := collectNames(t, provider)
	require.ElementsMatch(t, []string{"a.Concrete"}, names)
}

func TestSearchFindsDirectInterfaceImplementors(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Direct", IsConcrete: true, Interfaces: []string{marker}},
		ClassInfo{Name: "a.Unrelated", IsConcrete: true},
	)

	names := collectNames(t, provider)
	require.ElementsMatch(t, []string{"a.Direct"}, names)
}

func TestSearchFindsTransitiveSuperclassImplementors(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Root", IsConcrete: true, Interfaces: []string{marker}},
		ClassInfo{Name: "a.Mid", IsConcrete: false, SuperClassName: "a.Root"},
		ClassInfo{Name: "a.Leaf", IsConcrete: true, SuperClassName: "a.Mid"},
	)

	names := collectNames(t, provider)
	require.ElementsMatch(t, []string{"a.Leaf"}, names)
}

func TestSearchStopsOnPartialYield(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.One", IsConcrete: true, Interfaces: []string{marker}},
		ClassInfo{Name: "a.Two", IsConcrete: true, Interfaces: []string{marker}},
	)

	count := 0
	for range Search(context.Background(), provider) {
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestReachesMarkerHandlesMissingEdge(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Orphan", IsConcrete: true, SuperClassName: "a.DoesNotExist"},
	)

	require.False(t, reachesMarker(context.Background(), provider, "a.Orphan", marker))
}

func TestSearchFiltersByRootPrefix(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.InRoot", IsConcrete: true, Interfaces: []string{marker}, Location: "plugins/audit.jar"},
		ClassInfo{Name: "a.OutsideRoot", IsConcrete: true, Interfaces: []string{marker}, Location: "plugins-extra/audit.jar"},
	)

	var names []string
	for c := range Search(context.Background(), provider, "plugins") {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"a.InRoot"}, names)
}

func TestSearchDotRootMatchesEveryLocation(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Anywhere", IsConcrete: true, Interfaces: []string{marker}, Location: "internal/demoplugins"},
	)

	var names []string
	for c := range Search(context.Background(), provider, ".") {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"a.Anywhere"}, names)
}

func TestInternalIgnoresRoots(t *testing.T) {
	t.Parallel()

	marker := MarkerTypeName()
	provider := NewStaticMetadataProvider(
		ClassInfo{Name: "a.Anywhere", IsConcrete: true, Interfaces: []string{marker}, Location: "somewhere/odd"},
	)

	var names []string
	for c := range Internal(context.Background(), provider) {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"a.Anywhere"}, names)
}
