package builtin

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/signature"
)

func quietContext() context.Context {
	return logging.WithLogger(context.Background(), zerolog.Nop())
}

func TestModuleLoads(t *testing.T) {
	reg, diags := registry.Reload(quietContext(), []registry.Source{Module()})
	require.Empty(t, diags)
	assert.Equal(t, []string{ModuleName}, reg.Modules())
	assert.Equal(t, 9, reg.Len())

	e, ok := reg.Lookup(ModuleName, "divide")
	require.True(t, ok)
	assert.Equal(t, "(a float, b float) -> float", e.Signature.String())

	e, _ = reg.Lookup(ModuleName, "echo")
	assert.Equal(t, []signature.Param{{Name: "msg", Type: signature.String}}, e.Signature.Params)
}

func TestFunctions(t *testing.T) {
	assert.True(t, AddPositive(2, 3))
	assert.False(t, AddPositive(-3, 3))
	assert.True(t, IsEven(4))

	_, err := Divide(1, 0)
	assert.EqualError(t, err, "division by zero")
	q, err := Divide(9, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, q)

	assert.EqualError(t, Fail(""), "failed")
	assert.True(t, Contains("haystack", "st"))

	t.Setenv("TSEQ_BUILTIN_PROBE", "1")
	assert.True(t, EnvSet("TSEQ_BUILTIN_PROBE"))
}

func TestEchoWritesOutput(t *testing.T) {
	var buf bytes.Buffer
	Echo(registry.WithOutput(context.Background(), &buf), "hi")
	assert.Equal(t, "hi\n", buf.String())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepMS(ctx, 10_000), context.Canceled)
	assert.NoError(t, SleepMS(context.Background(), 1))
}
