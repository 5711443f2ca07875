package sources

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
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

func TestIsUnitFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"test_math.yaml", true},
		{"test_math.yml", true},
		{"test_math.YAML", true},
		{"test_functions.yaml", false},
		{"helper.yaml", false},
		{"test_math.txt", false},
		{"testmath.yaml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUnitFile(tt.name, DefaultReserved), tt.name)
	}
}

func TestDiscover(t *testing.T) {
	units, err := Discover("testdata", DefaultReserved)
	require.NoError(t, err)

	var names []string
	for _, u := range units {
		names = append(names, u.Name())
	}
	assert.Equal(t, []string{"test_broken", "test_math", "test_shell"}, names)
}

func TestDiscoverMissingDir(t *testing.T) {
	units, err := Discover(filepath.Join(t.TempDir(), "nope"), DefaultReserved)
	assert.NoError(t, err)
	assert.Empty(t, units)
}

func TestLoaderIsolatesBrokenUnit(t *testing.T) {
	reg, diags := NewLoader("testdata", DefaultReserved)(quietContext())

	require.Len(t, diags, 1)
	assert.Equal(t, "test_broken", diags[0].Module)
	assert.ErrorIs(t, diags[0], registry.ErrModuleLoad)
	assert.Contains(t, diags[0].Error(), "compile expr")

	assert.Equal(t, []string{"test_math", "test_shell"}, reg.Modules())
	assert.Equal(t, []string{"add_positive", "shout", "under_limit"}, reg.Functions("test_math"))
}

func TestExprFunctions(t *testing.T) {
	ns, err := NewFileUnit("testdata/test_math.yaml").Load(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	add := ns["add_positive"]
	assert.Equal(t, signature.Signature{
		Params:  []signature.Param{{Name: "a", Type: signature.Int}, {Name: "b", Type: signature.Int}},
		Returns: signature.Bool,
	}, add.Signature())

	got, err := add.Call(ctx, map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = add.Call(ctx, map[string]any{"a": -5, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, false, got)

	got, err = ns["under_limit"].Call(ctx, map[string]any{"n": 49.5})
	require.NoError(t, err)
	assert.Equal(t, true, got, "setup values are visible to functions")

	got, err = ns["shout"].Call(ctx, map[string]any{"word": "hey"})
	require.NoError(t, err)
	assert.Equal(t, "HEY", got)

	assert.NotContains(t, ns, "_scratch")
}

func TestCommandFunctions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	ns, err := NewFileUnit("testdata/test_shell.yaml").Load(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	ctx := registry.WithOutput(context.Background(), &out)
	got, err := ns["succeed"].Call(ctx, map[string]any{"msg": "hello"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "hello\n", out.String())

	_, err = ns["fail"].Call(context.Background(), map[string]any{"code": 2})
	assert.EqualError(t, err, "broken")

	_, err = ns["silent_fail"].Call(context.Background(), nil)
	assert.EqualError(t, err, "exit status 3")
}

func writeUnit(t *testing.T, body string) *FileUnit {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_tmp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return NewFileUnit(path)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "functions:\n  f:\n    exprr: \"1\"\n", "field exprr not found"},
		{"no body", "functions:\n  f:\n    params: [{name: a}]\n", "no body"},
		{"two bodies", "functions:\n  f:\n    expr: \"1\"\n    argv: [\"true\"]\n", "mutually exclusive"},
		{"bad type", "functions:\n  f:\n    params: [{name: a, type: date}]\n    expr: a\n", "unknown type"},
		{"duplicate param", "functions:\n  f:\n    params: [{name: a}, {name: a}]\n    expr: a\n", "declared twice"},
		{"setup error", "setup:\n  x: 1 / \nfunctions: {}\n", "setup \"x\""},
		{"bad template", "functions:\n  f:\n    argv: [\"{{ .a \"]\n", "argv[0] template"},
		{"malformed yaml", "functions: [\n", "yaml decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeUnit(t, tt.body).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyUnit(t *testing.T) {
	ns, err := writeUnit(t, "").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_live.yaml")
	require.NoError(t, os.WriteFile(path, []byte("functions:\n  one:\n    expr: \"1\"\n"), 0o644))
	load := NewLoader(dir, DefaultReserved)

	reg, _ := load(quietContext())
	assert.Equal(t, []string{"one"}, reg.Functions("test_live"))

	require.NoError(t, os.WriteFile(path, []byte("functions:\n  two:\n    expr: \"2\"\n"), 0o644))
	reg, _ = load(quietContext())
	assert.Equal(t, []string{"two"}, reg.Functions("test_live"))
}
