package plugin

import (
	"fmt"
	"reflect"
)

// UnknownPluginType is returned when an instantiated candidate does not
// satisfy the plugin capability (it does not implement Describable), and
// when the type name is not registered with the TypeRegistry at all.
type UnknownPluginType struct {
	TypeName string
}

func (e UnknownPluginType) Error() string {
	return fmt.Sprintf("plugin type %q is not registered or does not implement plugin.Describable\nHint: register its Factory with the TypeRegistry and embed plugin.Base in the type", e.TypeName)
}

// DepNameNotFound is returned when a named parameter could not be resolved
// in either the scoped or the global dependency manager.
type DepNameNotFound struct {
	Name string
}

func (e DepNameNotFound) Error() string {
	return fmt.Sprintf("dependency %q not found\nHint: register it before invoking this handler", e.Name)
}

// DepClassNotFound is returned when an unnamed parameter could not be
// resolved by assignable value class.
type DepClassNotFound struct {
	Class reflect.Type
}

func (e DepClassNotFound) Error() string {
	return fmt.Sprintf("no dependency assignable to %s found\nHint: register a value of that type, or annotate the parameter with plugin.Param", e.Class)
}

// DepUnexpectedClass is returned when a named lookup found an entry whose
// value class is not assignable to the declared parameter type.
type DepUnexpectedClass struct {
	Name     string
	Expected reflect.Type
	Actual   reflect.Type
}

func (e DepUnexpectedClass) Error() string {
	return fmt.Sprintf("dependency %q has type %s, expected assignable to %s", e.Name, e.Actual, e.Expected)
}

// DuplicateDependency is returned when adding a dependency under a name
// that is already bound in the manager.
type DuplicateDependency struct {
	Name string
}

func (e DuplicateDependency) Error() string {
	return fmt.Sprintf("dependency %q is already registered\nHint: remove the existing binding first, or choose a different name", e.Name)
}

// BadDependency is returned when constructing a Dependency with a missing
// or invalid field.
type BadDependency struct {
	Reason string
}

func (e BadDependency) Error() string {
	return fmt.Sprintf("invalid dependency: %s", e.Reason)
}

// PluginNotAttached is returned when Register/RegisterNamed is called on a
// plugin whose owning PluginManager back-reference has not yet been set.
type PluginNotAttached struct {
	TypeName string
}

func (e PluginNotAttached) Error() string {
	return fmt.Sprintf("plugin %q is not attached to a PluginManager\nHint: Register may only be called from within a handler invocation", e.TypeName)
}

// ErrAlreadyAttached is returned when a PluginManager attempts to attach
// itself to a plugin instance whose back-reference once-cell has already
// been set. This is a programming error: it indicates loadPlugin tried to
// attach the same instance twice.
type ErrAlreadyAttached struct {
	TypeName string
}

func (e ErrAlreadyAttached) Error() string {
	return fmt.Sprintf("plugin %q is already attached to a PluginManager", e.TypeName)
}

// LoadFailure wraps any error thrown from zero-argument construction or
// from a reflective handler invocation.
type LoadFailure struct {
	TypeName string
	Cause    error
}

func (e LoadFailure) Error() string {
	return fmt.Sprintf("load failure for %q: %v", e.TypeName, e.Cause)
}

func (e LoadFailure) Unwrap() error {
	return e.Cause
}
