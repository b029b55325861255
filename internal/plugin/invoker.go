package plugin

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brokkr-dev/plugboard/internal/logger"
)

var errorInterfaceType = reflect.TypeOf((*error)(nil)).Elem()

var invokerTracer = otel.Tracer("github.com/brokkr-dev/plugboard/internal/plugin")

// Result is one handler invocation's outcome: spec.md §4.6's try_invoke
// raw result on success, or the resolution/call error that blocked it.
type Result struct {
	PluginName  string
	HandlerName string
	Values      []any
	Err         error
}

// Success reports whether the invocation completed without error.
func (r Result) Success() bool { return r.Err == nil }

// bundle is the (plugin, handler) pair spec.md §3 calls a Bundle.
type bundle struct {
	plugin  *activePlugin
	handler HandlerDescriptor
}

// runFixedPoint implements spec.md §4.6's algorithm: repeatedly attempt
// every still-pending bundle. A bundle that resolves and calls cleanly
// freezes its Result at its original index and drops out of the pending
// set; one that fails is retried next round with whatever it last
// Register'd now visible. A round that fails to shrink the pending set
// commits every remaining failure (their most recent reason) and stops —
// this is what lets interdependent handlers converge without a
// precomputed dependency graph, and what turns a genuine cycle or missing
// dependency into a bounded number of rounds rather than an infinite loop.
func runFixedPoint(ctx context.Context, bundles []bundle, scope, global DependencyManager, log *logger.Logger) []Result {
	if scope == nil {
		scope = EmptyDependencyManager()
	}

	results := make([]Result, len(bundles))

	type indexed struct {
		index int
		b     bundle
	}
	pending := make([]indexed, len(bundles))
	for i, b := range bundles {
		pending[i] = indexed{index: i, b: b}
	}

	round := 0
	for len(pending) > 0 {
		roundCtx, span := invokerTracer.Start(ctx, "plugin.fixedPointRound",
			trace.WithAttributes(
				attribute.Int("round", round),
				attribute.Int("pending", len(pending)),
			))

		var next []indexed
		for _, p := range pending {
			values, err := tryInvoke(roundCtx, p.b, scope, global)
			name := runtimeFuncName(p.b.handler.Fn)
			if err == nil {
				results[p.index] = Result{
					PluginName:  p.b.plugin.Name(),
					HandlerName: name,
					Values:      values,
				}
				recordInvocation(p.b.handler.Kind, true)
				if log != nil {
					log.Sub(p.b.plugin.Name()).Trace("handler succeeded: " + name)
				}
				continue
			}

			results[p.index] = Result{
				PluginName:  p.b.plugin.Name(),
				HandlerName: name,
				Err:         err,
			}
			next = append(next, p)
		}

		span.End()

		if len(next) == len(pending) {
			for _, p := range next {
				recordInvocation(p.b.handler.Kind, false)
				if log != nil {
					log.Sub(p.b.plugin.Name()).Error(results[p.index].Err, "handler did not converge: "+runtimeFuncName(p.b.handler.Fn))
				}
			}
			recordFixedPointRounds(round + 1)
			return results
		}

		pending = next
		round++
	}

	recordFixedPointRounds(round)
	return results
}

// tryInvoke resolves b.handler's parameters against scope then global and,
// if every parameter resolves, calls the underlying method. A panicking
// handler body is converted into a LoadFailure rather than crashing the
// invoker, so one misbehaving plugin cannot take down a whole batch.
func tryInvoke(ctx context.Context, b bundle, scope, global DependencyManager) (_ []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = LoadFailure{TypeName: b.plugin.Name(), Cause: fmt.Errorf("panic in handler: %v", r)}
		}
	}()

	args := make([]reflect.Value, len(b.handler.Params))
	for i, p := range b.handler.Params {
		v, rerr := resolveParam(p, scope, global)
		if rerr != nil {
			return nil, rerr
		}
		args[i] = v
	}

	out := b.handler.Fn.Call(args)

	values := make([]any, 0, len(out))
	var callErr error
	for i, v := range out {
		if i == len(out)-1 && v.Type() == errorInterfaceType {
			if !v.IsNil() {
				callErr = v.Interface().(error)
			}
			continue
		}
		values = append(values, v.Interface())
	}
	if callErr != nil {
		return nil, LoadFailure{TypeName: b.plugin.Name(), Cause: callErr}
	}
	return values, nil
}

// resolveParam implements spec.md §4.6's two resolution rules. A named
// parameter (via plugin.Param) looks up scope then global by name; a class
// mismatch is reported as DepUnexpectedClass without ever falling back to
// unnamed resolution (Testable Property 6). An unnamed parameter collects
// every scope candidate assignable to its type, falling back to global
// candidates only when scope has none, and the last match wins when more
// than one is assignable (Testable Property 4's insertion-order,
// last-match-wins rule, restated for the scope/global split).
func resolveParam(p ParamSpec, scope, global DependencyManager) (reflect.Value, error) {
	if p.DepName != "" {
		dep, ok := scope.Find(p.DepName)
		if !ok {
			dep, ok = global.Find(p.DepName)
		}
		if !ok {
			return reflect.Value{}, DepNameNotFound{Name: p.DepName}
		}
		if !assignableTo(dep.ValueClass(), p.Type) {
			return reflect.Value{}, DepUnexpectedClass{Name: p.DepName, Expected: p.Type, Actual: dep.ValueClass()}
		}
		return reflect.ValueOf(dep.Value), nil
	}

	candidates := scope.FindByValueClass(p.Type)
	if len(candidates) == 0 {
		candidates = global.FindByValueClass(p.Type)
	}
	if len(candidates) == 0 {
		return reflect.Value{}, DepClassNotFound{Class: p.Type}
	}
	last := candidates[len(candidates)-1]
	return reflect.ValueOf(last.Value), nil
}
