package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/brokkr-dev/plugboard/internal/logger"
)

// PluginManager is the host spec.md §3 calls the Plugin Manager: the
// registry of active plugin instances, the global dependency space they
// Register into, and the entry points that drive the plugin lifecycle
// (load, initialize, fire events, destroy). The zero value is not usable;
// construct with NewPluginManager.
type PluginManager struct {
	registry *TypeRegistry
	provider MetadataProvider
	log      *logger.Logger
	config   ManagerConfig

	global DependencyManager

	mu            sync.RWMutex
	plugins       map[string]*activePlugin
	order         []string
	internalTypes map[string]ClassInfo
	externalTypes map[string]ClassInfo

	internalOnce sync.Once
	loadGroup    singleflight.Group
}

// NewPluginManager wires a registry (for resolving declared type names to
// Factories) and a metadata provider (for Search) into a fresh manager with
// its own global DependencyManager. log may be nil.
func NewPluginManager(registry *TypeRegistry, provider MetadataProvider, log *logger.Logger) *PluginManager {
	return &PluginManager{
		registry:      registry,
		provider:      provider,
		log:           log,
		config:        DefaultConfig(),
		global:        NewDependencyManager(),
		plugins:       make(map[string]*activePlugin),
		internalTypes: make(map[string]ClassInfo),
		externalTypes: make(map[string]ClassInfo),
	}
}

// WithConfig replaces the manager's ManagerConfig (e.g. after LoadConfig
// parses a file the CLI harness was pointed at).
func (m *PluginManager) WithConfig(cfg ManagerConfig) *PluginManager {
	m.config = cfg
	return m
}

// Global exposes the manager's global DependencyManager, the scope every
// Base.Register call publishes into and every unnamed/ named parameter
// resolution falls back to.
func (m *PluginManager) Global() DependencyManager { return m.global }

// Registry returns the manager's TypeRegistry.
func (m *PluginManager) Registry() *TypeRegistry { return m.registry }

// Provider returns the manager's MetadataProvider, the collaborator Search
// walks to discover plugin types.
func (m *PluginManager) Provider() MetadataProvider { return m.provider }

// Plugins returns every currently active plugin, in load order.
func (m *PluginManager) Plugins() []*activePlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*activePlugin, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.plugins[name])
	}
	return out
}

// Plugin looks up an already-loaded plugin by its declared type name.
func (m *PluginManager) Plugin(typeName string) (*activePlugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[typeName]
	return p, ok
}

// LoadPlugin resolves typeName via the manager's TypeRegistry, constructs
// one instance, attaches the manager's once-cell back-reference, and
// records it as active. Concurrent LoadPlugin calls for the same typeName
// collapse onto a single construction via singleflight, and a typeName
// already active is returned as-is — spec.md §4.5 Testable Property 1's
// "loading an already-active plugin is a no-op that returns the existing
// instance".
func (m *PluginManager) LoadPlugin(ctx context.Context, typeName string) (*activePlugin, error) {
	if existing, ok := m.Plugin(typeName); ok {
		return existing, nil
	}

	v, err, _ := m.loadGroup.Do(typeName, func() (any, error) {
		if existing, ok := m.Plugin(typeName); ok {
			return existing, nil
		}

		factory, ok := m.registry.Resolve(typeName)
		if !ok {
			return nil, UnknownPluginType{TypeName: typeName}
		}

		raw := factory()
		instance, ok := raw.(Describable)
		if !ok {
			return nil, UnknownPluginType{TypeName: typeName}
		}

		if a, ok := raw.(attacher); ok {
			if err := a.attach(m, typeName); err != nil {
				return nil, LoadFailure{TypeName: typeName, Cause: err}
			}
		}

		active := newActivePlugin(instance)
		active.name = typeName

		m.mu.Lock()
		m.plugins[typeName] = active
		m.order = append(m.order, typeName)
		setActivePlugins(len(m.order))
		m.mu.Unlock()

		if m.log != nil {
			m.log.Sub(typeName).Info("plugin loaded")
		}

		return active, nil
	})
	if err != nil {
		if m.log != nil {
			m.log.Sub(typeName).Error(err, "plugin load failed")
		}
		return nil, err
	}
	return v.(*activePlugin), nil
}

// LoadPlugins extends the registry's search roots with each of roots,
// invokes PluginSearcher.Search over those roots, loads every yielded
// type, and returns the newly-loaded plugins — spec.md §4.5's
// `loadPlugins(paths*)`. It does not auto-initialize them; the caller
// decides when via InitializePlugins. Discovered types are recorded under
// externalTypes, the second of the three disjoint-by-purpose maps spec.md
// §3 names.
func (m *PluginManager) LoadPlugins(ctx context.Context, roots ...string) ([]*activePlugin, error) {
	for _, root := range roots {
		m.registry.AddRoot(root)
	}

	var out []*activePlugin
	for class := range Search(ctx, m.provider, roots...) {
		if _, alreadyActive := m.Plugin(class.Name); alreadyActive {
			continue
		}

		p, err := m.LoadPlugin(ctx, class.Name)
		if err != nil {
			return out, err
		}

		m.mu.Lock()
		m.externalTypes[class.Name] = class
		m.mu.Unlock()

		out = append(out, p)
	}
	return out, nil
}

// Initialize is spec.md §4.5's `initialize()`: the first call lazily
// computes the internal type set from PluginSearcher.Internal, loads each
// discovered type, and runs InitializePlugins over every discovered type
// under an empty scope, including types that were already active before
// this call. Subsequent calls are a no-op —
// the internal type set is computed once per manager, matching "lazily
// computed the first time initialize() is called".
func (m *PluginManager) Initialize(ctx context.Context) error {
	var initErr error
	m.internalOnce.Do(func() {
		var newlyLoaded []string
		for class := range Internal(ctx, m.provider) {
			m.mu.Lock()
			m.internalTypes[class.Name] = class
			m.mu.Unlock()

			if _, err := m.LoadPlugin(ctx, class.Name); err != nil {
				initErr = err
				return
			}
			newlyLoaded = append(newlyLoaded, class.Name)
		}
		if len(newlyLoaded) == 0 {
			return
		}
		_, initErr = m.InitializePlugins(ctx, EmptyDependencyManager(), newlyLoaded...)
	})
	return initErr
}

// InitializePlugins runs the @Init handlers of every named, already-loaded
// plugin through the fixed-point invoker in a single batch, so handlers on
// different plugins that Register dependencies for one another converge
// regardless of load order (spec.md §4.6). Results are grouped by plugin
// type name, preserving per-handler ordering within each plugin, per
// spec.md §4.5. Unresolved typeNames are reported as PluginNotAttached.
func (m *PluginManager) InitializePlugins(ctx context.Context, scope DependencyManager, typeNames ...string) (map[string][]Result, error) {
	bundles, err := m.collectBundles(typeNames, func(p *activePlugin) []HandlerDescriptor { return p.InitHandlers() })
	if err != nil {
		return nil, err
	}

	ctx, span := invokerTracer.Start(ctx, "plugin.initialize", trace.WithAttributes(attribute.Int("plugins", len(typeNames))))
	defer span.End()

	results := runFixedPoint(ctx, bundles, scope, m.global, m.log)
	grouped := groupByPlugin(results)
	m.logBatchOutcome("initialize", grouped)
	return grouped, m.policyError(results)
}

// DestroyPlugins runs the @Destroy handlers of every named, already-loaded
// plugin through the fixed-point invoker. Per spec.md §4.5, a plugin is
// removed from the active set iff all of its destroy handlers succeeded,
// or destroyOnFailure is true; otherwise it stays active so a caller can
// retry or inspect it.
func (m *PluginManager) DestroyPlugins(ctx context.Context, scope DependencyManager, destroyOnFailure bool, typeNames ...string) (map[string][]Result, error) {
	bundles, err := m.collectBundles(typeNames, func(p *activePlugin) []HandlerDescriptor { return p.DestroyHandlers() })
	if err != nil {
		return nil, err
	}

	ctx, span := invokerTracer.Start(ctx, "plugin.destroy", trace.WithAttributes(attribute.Int("plugins", len(typeNames))))
	defer span.End()

	results := runFixedPoint(ctx, bundles, scope, m.global, m.log)
	grouped := groupByPlugin(results)
	m.logBatchOutcome("destroy", grouped)

	m.mu.Lock()
	for _, name := range typeNames {
		allSucceeded := true
		for _, r := range grouped[name] {
			if !r.Success() {
				allSucceeded = false
				break
			}
		}
		if allSucceeded || destroyOnFailure {
			delete(m.plugins, name)
			m.order = removeName(m.order, name)
		}
	}
	setActivePlugins(len(m.order))
	m.mu.Unlock()

	return grouped, m.policyError(results)
}

// groupByPlugin splits a flat Result sequence by PluginName, preserving
// each plugin's handlers in the order runFixedPoint recorded them.
func groupByPlugin(results []Result) map[string][]Result {
	grouped := make(map[string][]Result)
	for _, r := range results {
		grouped[r.PluginName] = append(grouped[r.PluginName], r)
	}
	return grouped
}

// logBatchOutcome logs one line per plugin in a batch, per spec.md §4.5's
// "log success/failure per plugin".
func (m *PluginManager) logBatchOutcome(phase string, grouped map[string][]Result) {
	if m.log == nil {
		return
	}
	for name, results := range grouped {
		sub := m.log.Sub(name)
		failed := 0
		for _, r := range results {
			if !r.Success() {
				failed++
			}
		}
		if failed == 0 {
			sub.Info(phase + ": all handlers succeeded")
		} else {
			sub.Warn(fmt.Sprintf("%s: %d of %d handlers failed", phase, failed, len(results)))
		}
	}
}

// FireEvent fires eventName across every active plugin's matching @Event
// and @Events handlers, with extraDeps forming the per-fire scope that
// overrides the global manager for named and unnamed resolution alike
// (spec.md §4.2's "named scope overrides global").
func (m *PluginManager) FireEvent(ctx context.Context, eventName string, extraDeps ...Dependency) ([]Result, error) {
	scope, err := NewScopedDependencyManager(extraDeps...)
	if err != nil {
		return nil, err
	}
	return m.FireEventWith(ctx, eventName, scope), nil
}

// FireEventWith is FireEvent with a caller-supplied scope, for callers that
// already hold a DependencyManager (e.g. a nested fire reusing its
// parent's scope).
func (m *PluginManager) FireEventWith(ctx context.Context, eventName string, scope DependencyManager) []Result {
	var bundles []bundle
	for _, p := range m.Plugins() {
		for _, h := range p.EventMethodMap()[eventName] {
			bundles = append(bundles, bundle{plugin: p, handler: h})
		}
	}

	ctx, span := invokerTracer.Start(ctx, "plugin.fireEvent",
		trace.WithAttributes(
			attribute.String("event", eventName),
			attribute.Int("handlers", len(bundles)),
		))
	defer span.End()

	return runFixedPoint(ctx, bundles, scope, m.global, m.log)
}

// policyError honors DependencyPolicy: under the default lenient policy a
// failing Result is just data the caller can inspect, matching spec.md
// §4.6's "the invoker itself never aborts a batch". Under the strict
// policy, configured by the host that wants batch-level guarantees, any
// unconverged bundle is surfaced as an aggregate error.
func (m *PluginManager) policyError(results []Result) error {
	if m.config.DependencyPolicy != DependencyPolicyStrict {
		return nil
	}
	var failures []error
	for _, r := range results {
		if !r.Success() {
			failures = append(failures, fmt.Errorf("%s.%s: %w", r.PluginName, r.HandlerName, r.Err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.Join(failures...)
}

func (m *PluginManager) collectBundles(typeNames []string, handlers func(*activePlugin) []HandlerDescriptor) ([]bundle, error) {
	var bundles []bundle
	var missing []error
	for _, name := range typeNames {
		p, ok := m.Plugin(name)
		if !ok {
			missing = append(missing, PluginNotAttached{TypeName: name})
			continue
		}
		for _, h := range handlers(p) {
			bundles = append(bundles, bundle{plugin: p, handler: h})
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return bundles, nil
}
