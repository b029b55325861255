package plugin

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// HandlerKind identifies which of the four handler markers produced a
// HandlerDescriptor.
type HandlerKind int

const (
	// KindInit corresponds to the @Init marker: runs during initializePlugins.
	KindInit HandlerKind = iota
	// KindDestroy corresponds to the @Destroy marker: runs during destroyPlugins.
	KindDestroy
	// KindEvent corresponds to the @Event(name) marker: a single-event handler.
	KindEvent
	// KindEvents corresponds to the @Events(names) marker: a multi-event handler.
	KindEvents
)

// ParamSpec describes one resolved parameter of a handler: its declared
// type, and the dependency name forced on it by a plugin.Param option
// (empty means unnamed, class-based resolution — the default when no
// @DepName marker is present).
type ParamSpec struct {
	Type    reflect.Type
	DepName string
}

// HandlerDescriptor is the (ownerPlugin, method, parameterList) triple
// spec.md §3 describes, built once per handler by one of the builder
// functions below and cached for the plugin instance's lifetime.
type HandlerDescriptor struct {
	Kind       HandlerKind
	EventNames []string
	Fn         reflect.Value
	FnName     string
	Params     []ParamSpec
}

// HandlerOption customizes a HandlerDescriptor at build time. Param is
// currently the only option; it exists as an extension point the way the
// teacher's functional-option plugin mocks (WithDependencies, WithStateful,
// ...) are built.
type HandlerOption func(*HandlerDescriptor)

// Param forces named (as opposed to class-based) resolution of the
// parameter at the given zero-based index, the Go analogue of placing
// @DepName(name) on that parameter since Go carries no per-parameter
// annotation surface.
func Param(index int, name string) HandlerOption {
	return func(d *HandlerDescriptor) {
		if index < 0 || index >= len(d.Params) {
			return
		}
		d.Params[index].DepName = name
	}
}

// Init declares an @Init handler: fn must be a method value (or function)
// taking zero or more dependency parameters and returning error or
// (T, error).
func Init(fn any, opts ...HandlerOption) HandlerDescriptor {
	return buildDescriptor(KindInit, nil, fn, opts)
}

// Destroy declares an @Destroy handler with the same shape as Init.
func Destroy(fn any, opts ...HandlerOption) HandlerDescriptor {
	return buildDescriptor(KindDestroy, nil, fn, opts)
}

// Event declares a single-event handler bound to name.
func Event(name string, fn any, opts ...HandlerOption) HandlerDescriptor {
	if name == "" {
		panic("plugin.Event: name must not be empty")
	}
	return buildDescriptor(KindEvent, []string{name}, fn, opts)
}

// Events declares a multi-event handler bound to every name in names.
// names must be non-empty, matching spec.md's @Events(names) payload
// contract.
func Events(names []string, fn any, opts ...HandlerOption) HandlerDescriptor {
	if len(names) == 0 {
		panic("plugin.Events: names must be non-empty")
	}
	cp := append([]string(nil), names...)
	return buildDescriptor(KindEvents, cp, fn, opts)
}

func buildDescriptor(kind HandlerKind, eventNames []string, fn any, opts []HandlerOption) HandlerDescriptor {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		panic(fmt.Sprintf("plugin: handler must be a function value, got %T", fn))
	}

	ft := fv.Type()
	params := make([]ParamSpec, ft.NumIn())
	for i := range params {
		params[i] = ParamSpec{Type: ft.In(i)}
	}

	d := HandlerDescriptor{
		Kind:       kind,
		EventNames: eventNames,
		Fn:         fv,
		FnName:     runtimeFuncName(fv),
		Params:     params,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Marker is the Go analogue of the @Plugin type marker: any concrete type
// embedding Base satisfies it and is eligible for discovery by
// PluginSearcher and instantiation by PluginManager.
type Marker interface {
	isPlugin()
}

// attacher is implemented by Base; PluginManager uses it to set the
// once-cell back-reference on a freshly constructed plugin instance
// without needing to know the instance's concrete type.
type attacher interface {
	attach(m *PluginManager, typeName string) error
}

// registerer is implemented by Base; it is the "handler bodies may call
// back into the DependencyManager" surface of spec.md §4.2, reached
// through the same back-reference attach sets.
type registerer interface {
	Register(value any) (Dependency, error)
	RegisterNamed(name string, value any) error
}

// Base is embedded by every plugin type to satisfy Marker and to provide
// the Register/RegisterNamed handler surface, the way the source system's
// @Plugin annotation tags a type and its handler bodies call back into the
// host. The zero value is ready to use; PluginManager.LoadPlugin attaches
// itself to Base's once-cell the moment the instance is constructed.
type Base struct {
	typeName string
	manager  atomic.Pointer[PluginManager]
}

func (*Base) isPlugin() {}

func (b *Base) attach(m *PluginManager, typeName string) error {
	b.typeName = typeName
	if !b.manager.CompareAndSwap(nil, m) {
		return ErrAlreadyAttached{TypeName: typeName}
	}
	return nil
}

// Register publishes value into the global DependencyManager of the
// attached PluginManager under a fresh generated name.
func (b *Base) Register(value any) (Dependency, error) {
	m := b.manager.Load()
	if m == nil {
		return Dependency{}, PluginNotAttached{TypeName: b.typeName}
	}
	return m.global.Add(value), nil
}

// RegisterNamed publishes value under an explicit name.
func (b *Base) RegisterNamed(name string, value any) error {
	m := b.manager.Load()
	if m == nil {
		return PluginNotAttached{TypeName: b.typeName}
	}
	_, err := m.global.AddNamed(name, value)
	return err
}

// Describable is implemented by every plugin type: Describe returns the
// full set of HandlerDescriptors discovered on it. Re-declaring Describe
// on a type that embeds another Describable overrides the embedded
// descriptors entirely (Testable Property 2's override half); not
// re-declaring it inherits the embedded method verbatim (the inheritance
// half).
type Describable interface {
	Marker
	Describe() []HandlerDescriptor
}

// NewInstancePerEvent is embedded by a plugin type to carry the
// @NewInstancePerEvent marker forward. Per spec.md §9's open question, the
// core manager records but does not enforce this hint today.
type NewInstancePerEvent struct{}

func (NewInstancePerEvent) newInstancePerEvent() {}

type newInstancePerEventHint interface {
	newInstancePerEvent()
}

func runtimeFuncName(fv reflect.Value) string {
	ptr := fv.Pointer()
	if fn := runtimeFuncForPC(ptr); fn != "" {
		return fn
	}
	return fv.Type().String()
}
