package plugin

import (
	"context"
	"iter"
	"reflect"
	"strings"
)

// pluginMarkerTypeName is the package-qualified identifier PluginSearcher
// looks for while walking superclass/interface edges — the analogue of the
// fully qualified @Plugin annotation class name a JVM classpath scanner
// would report.
func pluginMarkerTypeName() string {
	t := reflect.TypeOf((*Marker)(nil)).Elem()
	return t.PkgPath() + "." + t.Name()
}

// MarkerTypeName exposes pluginMarkerTypeName to MetadataProvider
// implementations outside this package, so a ClassInfo's Interfaces slice
// can declare the plugin marker edge PluginSearcher looks for without
// guessing the package-qualified string by hand.
func MarkerTypeName() string {
	return pluginMarkerTypeName()
}

// Search walks provider's type graph and yields every concrete type that
// transitively implements the plugin marker through superclass and/or
// interface edges, per spec.md §4.3. When roots is non-empty, a candidate
// is only yielded if its ClassInfo.Location has one of roots as a path
// prefix — the Go analogue of "extend the classpath with each path, then
// search over those paths". With no roots the whole graph the provider
// reports is eligible, which is what Internal delegates to. The result is
// a lazy sequence; callers should not assume stable ordering across
// invocations (Go map iteration order is intentionally not stabilized
// here).
func Search(ctx context.Context, provider MetadataProvider, roots ...string) iter.Seq[ClassInfo] {
	marker := pluginMarkerTypeName()
	return func(yield func(ClassInfo) bool) {
		for _, candidate := range provider.Classes(ctx) {
			if !candidate.IsConcrete {
				continue
			}
			if len(roots) > 0 && !underAnyRoot(candidate.Location, roots) {
				continue
			}
			if reachesMarker(ctx, provider, candidate.Name, marker) {
				if !yield(candidate) {
					return
				}
			}
		}
	}
}

// Internal is spec.md §4.3's no-argument search: the set of concrete
// plugin types already visible through provider, without narrowing by
// classpath root. PluginManager.Initialize uses it to discover the
// internal type set the first time it runs.
func Internal(ctx context.Context, provider MetadataProvider) iter.Seq[ClassInfo] {
	return Search(ctx, provider)
}

// underAnyRoot reports whether location falls under one of roots, treating
// each root as a path prefix (so root "plugins" matches location
// "plugins/audit.jar" but not "plugins-extra/audit.jar"). "." is the
// classpath convention for "the current directory and everything under
// it", so it matches any location.
func underAnyRoot(location string, roots []string) bool {
	for _, root := range roots {
		if root == "." || location == root || strings.HasPrefix(location, strings.TrimSuffix(root, "/")+"/") {
			return true
		}
	}
	return false
}

// reachesMarker runs the breadth-first closure spec.md §4.3 describes:
// seed the frontier with the candidate, and at each step a match is found
// when the current node's name, superclass, or any declared interface
// equals marker; otherwise expand to supertype + interfaces and continue
// until the frontier is exhausted.
func reachesMarker(ctx context.Context, provider MetadataProvider, start, marker string) bool {
	frontier := []string{start}
	visited := make(map[string]bool)

	for len(frontier) > 0 {
		var next []string
		for _, name := range frontier {
			if visited[name] {
				continue
			}
			visited[name] = true

			if name == marker {
				return true
			}

			info, ok := provider.ClassByName(ctx, name)
			if !ok {
				continue
			}
			if info.SuperClassName == marker {
				return true
			}
			matched := false
			for _, iface := range info.Interfaces {
				if iface == marker {
					matched = true
					break
				}
			}
			if matched {
				return true
			}

			if info.SuperClassName != "" {
				next = append(next, info.SuperClassName)
			}
			next = append(next, info.Interfaces...)
		}
		frontier = next
	}

	return false
}
