package plugin

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// DependencyManager is a named registry of Dependency values, queryable by
// name, by assignable value class, or by assignable abstract type.
type DependencyManager interface {
	Add(value any) Dependency
	AddNamed(name string, value any) (Dependency, error)
	AddDependency(d Dependency) error
	Find(name string) (Dependency, bool)
	FindByType(t reflect.Type) []Dependency
	FindByValueClass(t reflect.Type) []Dependency
	Remove(name string) (Dependency, bool)
	RemoveByType(t reflect.Type) []Dependency
	RemoveByValueClass(t reflect.Type) []Dependency
	ToMap() map[string]Dependency
	ToSlice() []Dependency
}

// memoryDependencyManager is the concurrency-safe, map-backed
// implementation used as both the global manager and any scoped manager a
// caller builds explicitly.
type memoryDependencyManager struct {
	mu    sync.RWMutex
	order []string // insertion order, for "last match wins" semantics
	byID  map[string]Dependency
}

// NewDependencyManager returns an empty, writable DependencyManager.
func NewDependencyManager() DependencyManager {
	return &memoryDependencyManager{byID: make(map[string]Dependency)}
}

// NewScopedDependencyManager builds a DependencyManager pre-populated with
// the given dependencies, in order, for use as a FireEvent scope.
func NewScopedDependencyManager(deps ...Dependency) (DependencyManager, error) {
	m := NewDependencyManager()
	for _, d := range deps {
		if err := m.AddDependency(d); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *memoryDependencyManager) Add(value any) Dependency {
	name := uuid.NewString()
	d := Dependency{Name: name, AbstractType: reflect.TypeOf(value), Value: value}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[name] = d
	m.order = append(m.order, name)
	return d
}

func (m *memoryDependencyManager) AddNamed(name string, value any) (Dependency, error) {
	d, err := NewDependency(name, reflect.TypeOf(value), value)
	if err != nil {
		return Dependency{}, err
	}
	if err := m.AddDependency(d); err != nil {
		return Dependency{}, err
	}
	return d, nil
}

func (m *memoryDependencyManager) AddDependency(d Dependency) error {
	if d.Name == "" || d.AbstractType == nil || d.Value == nil {
		return BadDependency{Reason: "name, abstractType, and value are all required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[d.Name]; exists {
		return DuplicateDependency{Name: d.Name}
	}
	m.byID[d.Name] = d
	m.order = append(m.order, d.Name)
	return nil
}

func (m *memoryDependencyManager) Find(name string) (Dependency, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[name]
	return d, ok
}

func (m *memoryDependencyManager) FindByType(t reflect.Type) []Dependency {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Dependency
	for _, name := range m.order {
		d, ok := m.byID[name]
		if ok && assignableTo(d.AbstractType, t) {
			out = append(out, d)
		}
	}
	return out
}

func (m *memoryDependencyManager) FindByValueClass(t reflect.Type) []Dependency {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Dependency
	for _, name := range m.order {
		d, ok := m.byID[name]
		if ok && assignableTo(d.ValueClass(), t) {
			out = append(out, d)
		}
	}
	return out
}

func (m *memoryDependencyManager) Remove(name string) (Dependency, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[name]
	if !ok {
		return Dependency{}, false
	}
	delete(m.byID, name)
	m.order = removeName(m.order, name)
	return d, true
}

func (m *memoryDependencyManager) RemoveByType(t reflect.Type) []Dependency {
	return m.removeWhere(func(d Dependency) bool { return assignableTo(d.AbstractType, t) })
}

func (m *memoryDependencyManager) RemoveByValueClass(t reflect.Type) []Dependency {
	return m.removeWhere(func(d Dependency) bool { return assignableTo(d.ValueClass(), t) })
}

func (m *memoryDependencyManager) removeWhere(match func(Dependency) bool) []Dependency {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []Dependency
	var remaining []string
	for _, name := range m.order {
		d := m.byID[name]
		if match(d) {
			removed = append(removed, d)
			delete(m.byID, name)
			continue
		}
		remaining = append(remaining, name)
	}
	m.order = remaining
	return removed
}

func (m *memoryDependencyManager) ToMap() map[string]Dependency {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Dependency, len(m.byID))
	for k, v := range m.byID {
		out[k] = v
	}
	return out
}

func (m *memoryDependencyManager) ToSlice() []Dependency {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Dependency, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byID[name])
	}
	return out
}

func removeName(order []string, name string) []string {
	out := order[:0:0]
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// emptyDependencyManager is the designated sentinel whose mutating methods
// silently no-op (returning success), used as the default scope when a
// caller has none to supply.
type emptyDependencyManager struct{}

// EmptyDependencyManager returns the shared Empty sentinel manager.
func EmptyDependencyManager() DependencyManager { return emptyManagerInstance }

var emptyManagerInstance = &emptyDependencyManager{}

func (emptyDependencyManager) Add(value any) Dependency {
	return Dependency{Name: uuid.NewString(), AbstractType: reflect.TypeOf(value), Value: value}
}

func (emptyDependencyManager) AddNamed(name string, value any) (Dependency, error) {
	return NewDependency(name, reflect.TypeOf(value), value)
}

func (emptyDependencyManager) AddDependency(d Dependency) error { return nil }

func (emptyDependencyManager) Find(name string) (Dependency, bool) { return Dependency{}, false }

func (emptyDependencyManager) FindByType(t reflect.Type) []Dependency { return nil }

func (emptyDependencyManager) FindByValueClass(t reflect.Type) []Dependency { return nil }

func (emptyDependencyManager) Remove(name string) (Dependency, bool) { return Dependency{}, false }

func (emptyDependencyManager) RemoveByType(t reflect.Type) []Dependency { return nil }

func (emptyDependencyManager) RemoveByValueClass(t reflect.Type) []Dependency { return nil }

func (emptyDependencyManager) ToMap() map[string]Dependency { return map[string]Dependency{} }

func (emptyDependencyManager) ToSlice() []Dependency { return nil }
