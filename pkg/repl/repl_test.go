package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/sequence"
)

func quietContext() context.Context {
	return logging.WithLogger(context.Background(), zerolog.Nop())
}

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	load := func(ctx context.Context) (*registry.Registry, []registry.Diagnostic) {
		m := registry.NewGoModule("test_math").
			Register("add_positive", func(a, b int) bool { return a+b > 0 }, "a", "b").
			Register("echo", func(msg string) string { return msg }, "msg")
		return registry.Reload(ctx, []registry.Source{m})
	}
	var buf bytes.Buffer
	r := New(quietContext(), load, nil)
	r.output = &buf
	return r, &buf
}

func exec(r *REPL, lines ...string) {
	for _, l := range lines {
		r.Exec(quietContext(), l)
	}
}

func TestREPLComposeAndRun(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r,
		"add test_math.add_positive",
		"set 1 a 2",
		"set 1 b 3",
		"for",
		"add test_math.nope",
		"run",
	)
	out := buf.String()
	assert.Contains(t, out, "1. ✓ test_math.add_positive")
	assert.Contains(t, out, "2. ◆ for")
	assert.Contains(t, out, "test_math.nope not found")
	assert.Contains(t, out, "Warning: test_math.nope is not in the catalog")
	assert.Equal(t, 3, r.Sequence().Len())
}

func TestREPLSetKeepsRestOfLine(t *testing.T) {
	r, _ := newTestREPL(t)
	exec(r, "add test_math.echo", "set 1 msg hello  big world", "set 1 other")

	st, err := r.Sequence().At(0)
	require.NoError(t, err)
	fs := st.(*sequence.FunctionStep)
	assert.Equal(t, "hello  big world", fs.Param("msg"))
	assert.Equal(t, "", fs.Param("other"))
}

func TestREPLParamsRejectsControlSteps(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r, "if", "params 1", "set 1 a 1", "params 9")
	out := buf.String()
	assert.Contains(t, out, "step 1 is a if marker")
	assert.Contains(t, out, "index out of range")
}

func TestREPLRemoveMoveClear(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r, "if", "add test_math.echo", "end")

	exec(r, "mv 3 1")
	assert.Equal(t, []string{"1. end", "2. if", "3. test_math.echo"}, r.Sequence().RenderSummary())

	exec(r, "rm 7")
	assert.Contains(t, buf.String(), "index out of range")
	assert.Equal(t, 3, r.Sequence().Len())

	exec(r, "rm 1")
	assert.Equal(t, []string{"1. if", "2. test_math.echo"}, r.Sequence().RenderSummary())

	exec(r, "clear", "list")
	assert.Zero(t, r.Sequence().Len())
	assert.Contains(t, buf.String(), "(empty sequence)")
}

func TestREPLReloadKeepsParams(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r, "add test_math.add_positive", "set 1 a 7", "reload", "params 1")
	out := buf.String()
	assert.Contains(t, out, "Reloaded: 2 test functions in 1 modules.")
	assert.Contains(t, out, `"7"`)
}

func TestREPLHelpAndQuit(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r, "help")
	for _, cmd := range []string{"catalog", "add", "if | for | end", "set", "rm", "mv", "run", "clear", "reload", "quit"} {
		assert.Contains(t, buf.String(), cmd)
	}
	assert.False(t, r.Exec(quietContext(), "bogus"))
	assert.Contains(t, buf.String(), `Unknown command: "bogus"`)
	assert.True(t, r.Exec(quietContext(), "quit"))
}

func TestREPLCatalog(t *testing.T) {
	r, buf := newTestREPL(t)
	exec(r, "catalog")
	assert.True(t, strings.Contains(buf.String(), "add_positive"))
	assert.Equal(t, []string{"test_math.add_positive", "test_math.echo"}, r.labels(""))
}

func TestREPLBanner(t *testing.T) {
	r, buf := newTestREPL(t)
	r.printBanner()
	assert.True(t, strings.HasPrefix(buf.String(), "tseq: 2 test functions in 1 modules\n"), buf.String())
	assert.Contains(t, buf.String(), "Type 'help'")
}
