package plugin

import "runtime"

// runtimeFuncForPC resolves a function value's entry point to its
// qualified name, used only for logging/debugging handler invocations —
// never for dispatch, which always goes through the cached reflect.Value.
func runtimeFuncForPC(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return fn.Name()
}
