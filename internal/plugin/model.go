package plugin

import (
	"reflect"
	"sync"
)

// activePlugin wraps one constructed plugin instance: its memoized handler
// sequences and event-name map (spec.md §3's "Plugin instance"). The
// once-cell manager back-reference itself lives on plugin.Base, embedded
// in the user's plugin type — see attacher/registerer in markers.go.
type activePlugin struct {
	name     string
	instance Describable

	computeOnce     sync.Once
	initHandlers    []HandlerDescriptor
	destroyHandlers []HandlerDescriptor
	eventHandlers   []HandlerDescriptor
	eventsHandlers  []HandlerDescriptor
	eventMethodMap  map[string][]HandlerDescriptor
}

func newActivePlugin(instance Describable) *activePlugin {
	return &activePlugin{
		name:     reflect.TypeOf(instance).String(),
		instance: instance,
	}
}

// Name is the type name the plugin was loaded under by
// PluginManager.LoadPlugin, the same key the manager's active set uses. An
// activePlugin built directly with newActivePlugin reports its Go type as
// reflect.Type.String formats it.
func (p *activePlugin) Name() string { return p.name }

// Instance returns the underlying plugin value, e.g. for attach.
func (p *activePlugin) Instance() Describable { return p.instance }

func (p *activePlugin) ensureComputed() {
	p.computeOnce.Do(func() {
		descriptors := p.instance.Describe()
		eventMap := make(map[string][]HandlerDescriptor)

		for _, d := range descriptors {
			switch d.Kind {
			case KindInit:
				p.initHandlers = append(p.initHandlers, d)
			case KindDestroy:
				p.destroyHandlers = append(p.destroyHandlers, d)
			case KindEvent:
				p.eventHandlers = append(p.eventHandlers, d)
				appendUnique(eventMap, d.EventNames[0], d)
			case KindEvents:
				p.eventsHandlers = append(p.eventsHandlers, d)
				for _, name := range d.EventNames {
					appendUnique(eventMap, name, d)
				}
			}
		}

		p.eventMethodMap = eventMap
	})
}

// appendUnique records d under eventMap[name], collapsing the case where
// the same method was already recorded for this event name via the other
// marker (Testable Property 3: a method bearing both @Event(name=e) and
// @Events(names=[...,e,...]) contributes a single entry for e).
func appendUnique(eventMap map[string][]HandlerDescriptor, name string, d HandlerDescriptor) {
	for _, existing := range eventMap[name] {
		if existing.Fn.Pointer() == d.Fn.Pointer() {
			return
		}
	}
	eventMap[name] = append(eventMap[name], d)
}

// InitHandlers returns the plugin's @Init handlers in declared order.
func (p *activePlugin) InitHandlers() []HandlerDescriptor {
	p.ensureComputed()
	return p.initHandlers
}

// DestroyHandlers returns the plugin's @Destroy handlers in declared order.
func (p *activePlugin) DestroyHandlers() []HandlerDescriptor {
	p.ensureComputed()
	return p.destroyHandlers
}

// EventHandlers returns the plugin's single-event (@Event) handlers.
func (p *activePlugin) EventHandlers() []HandlerDescriptor {
	p.ensureComputed()
	return p.eventHandlers
}

// EventsHandlers returns the plugin's multi-event (@Events) handlers.
func (p *activePlugin) EventsHandlers() []HandlerDescriptor {
	p.ensureComputed()
	return p.eventsHandlers
}

// EventMethodMap returns the event-name → handlers map described in
// spec.md §3.
func (p *activePlugin) EventMethodMap() map[string][]HandlerDescriptor {
	p.ensureComputed()
	return p.eventMethodMap
}

// NewInstancePerEvent reports whether the underlying instance carries the
// @NewInstancePerEvent marker. Recorded only; see spec.md §9 Open Questions
// — the core manager does not act on this hint.
func (p *activePlugin) NewInstancePerEvent() bool {
	_, ok := p.instance.(newInstancePerEventHint)
	return ok
}
