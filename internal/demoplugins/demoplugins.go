// Package demoplugins ships a handful of small plugin.Base-embedding
// types the CLI harness can load, initialize, and fire events against out
// of the box, without requiring a caller to write their own plugin type
// first. They double as a worked example of marker inheritance (
// ExtendedGreeterPlugin embeds GreeterPlugin and overrides Describe) and
// of Events-based fanout (AuditPlugin).
package demoplugins

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

// Clock is the dependency ClockPlugin publishes: a fixed reference time
// other plugins can depend on instead of calling time.Now themselves.
type Clock struct {
	Now time.Time
}

// ClockPlugin has no events of its own; its only job is to Register a
// Clock during @Init so later handlers can depend on it by type.
type ClockPlugin struct {
	plugin.Base
}

// NewClockPlugin is ClockPlugin's zero-argument constructor, the Factory
// the type registry calls.
func NewClockPlugin() any { return &ClockPlugin{} }

func (p *ClockPlugin) Describe() []plugin.HandlerDescriptor {
	return []plugin.HandlerDescriptor{
		plugin.Init(p.initClock),
	}
}

func (p *ClockPlugin) initClock() error {
	_, err := p.Register(Clock{Now: time.Now()})
	return err
}

// GreeterPlugin greets on the "greet" event, resolving a Clock dependency
// by unnamed, type-based lookup, and records what it has said so far.
type GreeterPlugin struct {
	plugin.Base
	mu        sync.Mutex
	greetings []string
}

// NewGreeterPlugin is GreeterPlugin's Factory.
func NewGreeterPlugin() any { return &GreeterPlugin{} }

func (p *GreeterPlugin) Describe() []plugin.HandlerDescriptor {
	return []plugin.HandlerDescriptor{
		plugin.Event("greet", p.greet),
		plugin.Destroy(p.shutdown),
	}
}

func (p *GreeterPlugin) greet(clock Clock) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greetings = append(p.greetings, fmt.Sprintf("hello, it is %s", clock.Now.Format(time.RFC3339)))
	return nil
}

func (p *GreeterPlugin) shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greetings = append(p.greetings, "shutting down")
	return nil
}

// Greetings returns everything greet/shutdown have recorded, in order.
func (p *GreeterPlugin) Greetings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.greetings))
	copy(out, p.greetings)
	return out
}

// ExtendedGreeterPlugin embeds GreeterPlugin and overrides Describe to add
// a second "greet" handler, demonstrating that re-declaring Describe
// replaces the embedded descriptor set rather than appending to it — the
// override half of marker inheritance. It calls the embedded Describe
// explicitly to keep GreeterPlugin's own handlers, which is what "extend,
// don't discard" looks like in practice.
type ExtendedGreeterPlugin struct {
	GreeterPlugin
}

// NewExtendedGreeterPlugin is ExtendedGreeterPlugin's Factory.
func NewExtendedGreeterPlugin() any { return &ExtendedGreeterPlugin{} }

func (p *ExtendedGreeterPlugin) Describe() []plugin.HandlerDescriptor {
	inherited := p.GreeterPlugin.Describe()
	return append(inherited, plugin.Event("greet", p.announceExtended))
}

func (p *ExtendedGreeterPlugin) announceExtended(clock Clock) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greetings = append(p.greetings, fmt.Sprintf("[extended] hello again at %s", clock.Now.Format(time.RFC3339)))
	return nil
}

// AuditPlugin listens to the "greet" and "shutdown" events via a single
// @Events handler bound to both names, logging each occurrence.
type AuditPlugin struct {
	plugin.Base
	mu  sync.Mutex
	log []string
}

// NewAuditPlugin is AuditPlugin's Factory.
func NewAuditPlugin() any { return &AuditPlugin{} }

func (p *AuditPlugin) Describe() []plugin.HandlerDescriptor {
	return []plugin.HandlerDescriptor{
		plugin.Events([]string{"greet", "shutdown"}, p.record),
	}
}

func (p *AuditPlugin) record() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, fmt.Sprintf("event observed at %s", time.Now().Format(time.RFC3339)))
	return nil
}

// Log returns every event AuditPlugin has observed, in order.
func (p *AuditPlugin) Log() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.log))
	copy(out, p.log)
	return out
}

// Register adds every demo plugin type's Factory to registry under a
// declared root, so plugin.PluginManager.LoadPlugin can resolve them by
// name the way a real archive-backed classloader would.
func Register(registry *plugin.TypeRegistry) {
	registry.AddRoot("internal/demoplugins")
	registry.Register("demoplugins.ClockPlugin", reflect.TypeOf((*ClockPlugin)(nil)), NewClockPlugin)
	registry.Register("demoplugins.GreeterPlugin", reflect.TypeOf((*GreeterPlugin)(nil)), NewGreeterPlugin)
	registry.Register("demoplugins.ExtendedGreeterPlugin", reflect.TypeOf((*ExtendedGreeterPlugin)(nil)), NewExtendedGreeterPlugin)
	registry.Register("demoplugins.AuditPlugin", reflect.TypeOf((*AuditPlugin)(nil)), NewAuditPlugin)
}

// Classes returns the ClassInfo graph a real metadata scanner would report
// for this package, for use with plugin.Search/plugin.NewStaticMetadataProvider.
// ExtendedGreeterPlugin deliberately omits the marker interface itself and
// reaches it only through its GreeterPlugin superclass edge, exercising
// PluginSearcher's transitive BFS.
func Classes() []plugin.ClassInfo {
	marker := plugin.MarkerTypeName()
	return []plugin.ClassInfo{
		{Name: "demoplugins.ClockPlugin", IsConcrete: true, Interfaces: []string{marker}, Location: "internal/demoplugins"},
		{Name: "demoplugins.GreeterPlugin", IsConcrete: true, Interfaces: []string{marker}, Location: "internal/demoplugins"},
		{Name: "demoplugins.ExtendedGreeterPlugin", IsConcrete: true, SuperClassName: "demoplugins.GreeterPlugin", Location: "internal/demoplugins"},
		{Name: "demoplugins.AuditPlugin", IsConcrete: true, Interfaces: []string{marker}, Location: "internal/demoplugins"},
	}
}

// MetadataProvider builds the MetadataProvider for Classes.
func MetadataProvider() plugin.MetadataProvider {
	return plugin.NewStaticMetadataProvider(Classes()...)
}
