package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

const smoke = `name: smoke
steps:
  - call: test_math.add_positive
    params: {a: 2, b: "3"}
  - control: for
  - call: test_builtin.echo
    params: {msg: hello}
  - control: end
`

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateFileAndBuild(t *testing.T) {
	p, errs := ValidateFile(writePlan(t, smoke))
	require.Empty(t, errs)
	assert.Equal(t, "smoke", p.Name)

	seq, err := p.Sequence()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. test_math.add_positive",
		"2. for",
		"3. test_builtin.echo",
		"4. end",
	}, seq.RenderSummary())

	first, _ := seq.At(0)
	fs := first.(*sequence.FunctionStep)
	assert.Equal(t, "2", fs.Param("a"))
	assert.Equal(t, "3", fs.Param("b"))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		phase string
	}{
		{"unknown field", "steps:\n  - call: a.b\n    when: x\n", "structural"},
		{"both shapes", "steps:\n  - call: a.b\n    control: if\n", "semantic"},
		{"neither shape", "steps:\n  - params: {a: 1}\n", "semantic"},
		{"bad control", "steps:\n  - control: while\n", "semantic"},
		{"bad call", "steps:\n  - call: nodot\n", "semantic"},
		{"control params", "steps:\n  - control: if\n    params: {a: 1}\n  - control: end\n", "domain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateFile(writePlan(t, tt.body))
			require.NotEmpty(t, errs)
			assert.True(t, HasErrors(errs))
			assert.Equal(t, tt.phase, errs[0].Phase, errs[0].Error())
		})
	}
}

func TestValidateWarnsOnUnbalancedMarkers(t *testing.T) {
	_, errs := ValidateFile(writePlan(t, "steps:\n  - control: end\n  - control: for\n"))
	require.Len(t, errs, 2)
	assert.False(t, HasErrors(errs))
	assert.Equal(t, "steps/0/control", errs[0].Path)
}

func TestUnresolved(t *testing.T) {
	p, err := Load(strings.NewReader(smoke))
	require.NoError(t, err)
	warns := Unresolved(p, func(module, function string) bool { return module == "test_math" })
	require.Len(t, warns, 1)
	assert.Equal(t, "steps/2/call", warns[0].Path)
	assert.Equal(t, "warning", warns[0].Severity)
}

func TestSequenceIsFreshEachTime(t *testing.T) {
	p, err := Load(strings.NewReader(smoke))
	require.NoError(t, err)
	a, err := p.Sequence()
	require.NoError(t, err)
	b, err := p.Sequence()
	require.NoError(t, err)

	sa, _ := a.At(0)
	sb, _ := b.At(0)
	assert.NotEqual(t, sa.ID(), sb.ID())
	sa.(*sequence.FunctionStep).SetParam("a", "9")
	assert.Equal(t, "2", sb.(*sequence.FunctionStep).Param("a"))
}

func TestParseArgs(t *testing.T) {
	p, err := ParseArgs([]string{"test_math.add_positive:a=2,b=3", "FOR", "test_builtin.echo:msg=", "end"})
	require.NoError(t, err)
	assert.Equal(t, []Step{
		{Call: "test_math.add_positive", Params: map[string]string{"a": "2", "b": "3"}},
		{Control: "for"},
		{Call: "test_builtin.echo", Params: map[string]string{"msg": ""}},
		{Control: "end"},
	}, p.Steps)

	for _, bad := range []string{"nodot", ".fn", "mod.", "mod.fn:novalue", "mod.fn:=x"} {
		_, err := ParseArg(bad)
		assert.Error(t, err, bad)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, schemaID, doc["$id"])
	assert.Contains(t, string(data), `"oneOf"`)
}
