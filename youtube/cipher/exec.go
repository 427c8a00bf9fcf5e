package cipher

import (
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
)

const defaultExecTimeout = 2 * time.Second

// Executor runs extracted functions in an embedded JS engine. Each call gets
// its own isolated runtime with no shared global state, interrupted after a
// bounded timeout so pathological script cannot wedge the caller.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor with the default timeout.
func NewExecutor() *Executor {
	return &Executor{timeout: defaultExecTimeout}
}

// NewExecutorWithTimeout creates an Executor with a custom per-call timeout.
// Non-positive values use the default.
func NewExecutorWithTimeout(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	return &Executor{timeout: timeout}
}

// Run evaluates fn's body and invokes it by name with input as the sole
// argument, returning the string result. Any engine failure is surfaced as a
// coded *Error; callers treat execution failures as non-fatal and fall back
// to the untransformed value.
func (e *Executor) Run(fn *Function, input string) (string, error) {
	if fn == nil {
		return "", NewError(ErrCodeFunctionNotFound, "no function extracted")
	}

	vm := goja.New()

	var interrupted atomic.Bool
	timer := time.AfterFunc(e.timeout, func() {
		interrupted.Store(true)
		vm.Interrupt("execution timeout")
	})
	defer timer.Stop()

	if _, err := vm.RunString(fn.Body); err != nil {
		if interrupted.Load() {
			return "", NewError(ErrCodeExecTimeout, "script evaluation timed out", fn.Name)
		}
		return "", NewError(ErrCodeJSParsingFailed, "script evaluation failed", err.Error())
	}

	callable, ok := goja.AssertFunction(vm.Get(fn.Name))
	if !ok {
		return "", NewError(ErrCodeFunctionNotFound, "function not defined by script", fn.Name)
	}

	result, err := callable(goja.Undefined(), vm.ToValue(input))
	if err != nil {
		if interrupted.Load() {
			return "", NewError(ErrCodeExecTimeout, "function call timed out", fn.Name)
		}
		return "", NewError(ErrCodeJSExecutionFailed, "function call failed", err.Error())
	}

	return result.String(), nil
}
