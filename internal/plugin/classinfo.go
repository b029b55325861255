package plugin

import "context"

// ClassInfo is the external metadata-scanner contract spec.md §6 describes:
// for each declared type, whether it is concrete, its direct supertype
// name, and its declared interface names. plugboard does not define how
// this data is obtained — see MetadataProvider.
type ClassInfo struct {
	Name           string   `yaml:"name"`
	IsConcrete     bool     `yaml:"is_concrete"`
	SuperClassName string   `yaml:"super_class_name"`
	Interfaces     []string `yaml:"interfaces"`
	Location       string   `yaml:"location"`
}

// MetadataProvider is the external scanner collaborator PluginSearcher
// walks. Implementations enumerate declared types from whatever archive or
// directory paths the host scans; plugboard ships StaticMetadataProvider
// as a demo/default and a filesystem-watching variant,
// WatchingMetadataProvider, which cmd/plugboard's search-fs command uses.
type MetadataProvider interface {
	// Classes yields every known ClassInfo. Order is not significant.
	Classes(ctx context.Context) []ClassInfo
	// ClassByName looks up a single ClassInfo, the "helper that returns a
	// mapping name → ClassInfo" spec.md §6 names.
	ClassByName(ctx context.Context, name string) (ClassInfo, bool)
}

// StaticMetadataProvider is a MetadataProvider backed by a fixed, in-memory
// graph — the shape a real archive/classpath scanner would hand back,
// useful for tests and for hosts that pre-compute their type graph.
type StaticMetadataProvider struct {
	byName map[string]ClassInfo
}

// NewStaticMetadataProvider builds a provider from the given ClassInfo set.
func NewStaticMetadataProvider(classes ...ClassInfo) *StaticMetadataProvider {
	byName := make(map[string]ClassInfo, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}
	return &StaticMetadataProvider{byName: byName}
}

// Classes returns every registered ClassInfo.
func (p *StaticMetadataProvider) Classes(ctx context.Context) []ClassInfo {
	out := make([]ClassInfo, 0, len(p.byName))
	for _, c := range p.byName {
		out = append(out, c)
	}
	return out
}

// ClassByName looks up one ClassInfo by name.
func (p *StaticMetadataProvider) ClassByName(ctx context.Context, name string) (ClassInfo, bool) {
	c, ok := p.byName[name]
	return c, ok
}
