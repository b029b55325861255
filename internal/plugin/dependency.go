package plugin

import (
	"reflect"
	"strings"
)

// Dependency is an immutable, named, typed value registered in a
// DependencyManager. AbstractType is the declared type of the binding
// (used for type-based queries); ValueClass is Value's concrete runtime
// type and may differ from AbstractType (e.g. an interface abstract type
// bound to a concrete implementation).
type Dependency struct {
	Name         string
	AbstractType reflect.Type
	Value        any
}

// ValueClass returns the concrete runtime type of the dependency's value.
func (d Dependency) ValueClass() reflect.Type {
	return reflect.TypeOf(d.Value)
}

// NewDependency validates and constructs a Dependency. It fails with
// BadDependency if name is empty, abstractType is nil, or value is nil.
func NewDependency(name string, abstractType reflect.Type, value any) (Dependency, error) {
	if strings.TrimSpace(name) == "" {
		return Dependency{}, BadDependency{Reason: "name must not be empty"}
	}
	if abstractType == nil {
		return Dependency{}, BadDependency{Reason: "abstractType must not be nil"}
	}
	if value == nil {
		return Dependency{}, BadDependency{Reason: "value must not be nil"}
	}
	return Dependency{Name: name, AbstractType: abstractType, Value: value}, nil
}

// assignableTo reports whether t can satisfy target, covering both the
// "target is an interface t implements" and the "t is identical to or a
// named subtype of target" cases the spec's type-based queries need.
func assignableTo(t, target reflect.Type) bool {
	if t == nil || target == nil {
		return false
	}
	if t == target {
		return true
	}
	return t.AssignableTo(target)
}
