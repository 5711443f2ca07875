package registry

import (
	"context"
	"fmt"
)

// InvocationError is raised by a test function while it runs.
type InvocationError struct {
	Module   string
	Function string
	Cause    error
}

func (e *InvocationError) Error() string {
	return e.Cause.Error()
}

func (e *InvocationError) Unwrap() error { return e.Cause }

// Invoke calls the entry's function, turning a panic into an InvocationError.
func (e *FunctionEntry) Invoke(ctx context.Context, args map[string]any) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret = nil
			err = &InvocationError{Module: e.Module, Function: e.Name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	ret, err = e.Callable.Call(ctx, args)
	if err != nil {
		return nil, &InvocationError{Module: e.Module, Function: e.Name, Cause: err}
	}
	return ret, nil
}
