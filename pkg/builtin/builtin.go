// Package builtin provides a Go-native module of general purpose test
// functions that is always available, whatever units the sources directory
// holds.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ormasoftchile/tseq/pkg/registry"
)

// ModuleName is the name the builtin functions are registered under.
const ModuleName = "test_builtin"

// Module returns a fresh copy of the builtin module.
func Module() *registry.GoModule {
	return registry.NewGoModule(ModuleName).
		Register("add_positive", AddPositive, "a", "b").
		Register("is_even", IsEven, "n").
		Register("divide", Divide, "a", "b").
		Register("contains", Contains, "text", "substr").
		Register("echo", Echo, "msg").
		Register("expect", Expect, "ok").
		Register("fail", Fail, "reason").
		Register("sleep_ms", SleepMS, "ms").
		Register("env_set", EnvSet, "name")
}

// AddPositive passes when a + b is greater than zero.
func AddPositive(a, b int) bool { return a+b > 0 }

// IsEven passes for even n.
func IsEven(n int) bool { return n%2 == 0 }

// Divide returns a / b; a zero divisor is an error rather than a falsy result.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}

// Contains passes when substr occurs in text.
func Contains(text, substr string) bool { return strings.Contains(text, substr) }

// Echo writes msg to the step output and returns nothing.
func Echo(ctx context.Context, msg string) {
	fmt.Fprintln(registry.Output(ctx), msg)
}

// Expect returns ok unchanged.
func Expect(ok bool) bool { return ok }

// Fail always fails with reason.
func Fail(reason string) error {
	if reason == "" {
		reason = "failed"
	}
	return errors.New(reason)
}

// SleepMS waits ms milliseconds or until ctx is done.
func SleepMS(ctx context.Context, ms int) error {
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnvSet passes when the environment variable is set and non-empty.
func EnvSet(name string) bool { return os.Getenv(name) != "" }
