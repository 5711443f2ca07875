package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanFromArgs(t *testing.T) {
	var warn bytes.Buffer
	p, err := buildPlan("", []string{"test_builtin.add_positive:a=1,b=2", "if", "end"}, &warn)
	require.NoError(t, err)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, "test_builtin.add_positive", p.Steps[0].Call)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, p.Steps[0].Params)
	assert.Equal(t, "if", p.Steps[1].Control)
	assert.Empty(t, warn.String())
}

func TestBuildPlanWarnsOnUnbalancedMarkers(t *testing.T) {
	var warn bytes.Buffer
	_, err := buildPlan("", []string{"for"}, &warn)
	require.NoError(t, err)
	assert.Contains(t, warn.String(), "⚠")
}

func TestBuildPlanErrors(t *testing.T) {
	var warn bytes.Buffer

	_, err := buildPlan("", nil, &warn)
	assert.ErrorContains(t, err, "no steps")

	_, err = buildPlan("plan.yaml", []string{"if"}, &warn)
	assert.ErrorContains(t, err, "not both")

	_, err = buildPlan("", []string{"nodot"}, &warn)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - control: while\n"), 0o644))
	_, err = buildPlan(path, nil, &warn)
	assert.ErrorContains(t, err, "validation failed")
	assert.Contains(t, warn.String(), "1. [semantic]")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	unit := "functions:\n  is_small:\n    params: [{name: n, type: int}]\n    returns: bool\n    expr: n < 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_local.yaml"), []byte(unit), 0o644))
	tracePath := filepath.Join(dir, "run.jsonl")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "--dir", dir, "--trace", tracePath, "--report", "json",
		"test_local.is_small:n=3", "test_builtin.is_even:n=4"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"kind": "success"`)
	assert.FileExists(t, tracePath)

	out.Reset()
	rootCmd.SetArgs([]string{"run", "--dir", dir, "test_local.is_small:n=30"})
	assert.ErrorIs(t, rootCmd.Execute(), errRunFailed)
}

func TestTraceCommand(t *testing.T) {
	dir := t.TempDir()
	unit := "functions:\n  is_small:\n    params: [{name: n, type: int}]\n    returns: bool\n    expr: n < 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_local.yaml"), []byte(unit), 0o644))
	tracePath := filepath.Join(dir, "run.jsonl")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "--dir", dir, "--trace", tracePath, "test_local.is_small:n=3"})
	require.NoError(t, rootCmd.Execute())
	rootCmd.SetArgs([]string{"run", "--dir", dir, "--trace", tracePath, "test_local.is_small:n=30"})
	require.ErrorIs(t, rootCmd.Execute(), errRunFailed)

	out.Reset()
	rootCmd.SetArgs([]string{"trace", tracePath})
	require.NoError(t, rootCmd.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, out.String())
	assert.Contains(t, lines[0], "passed")
	assert.Contains(t, lines[0], "1/1 steps")
	assert.Contains(t, lines[1], "failed")
	assert.Contains(t, lines[2], "✗ test_local.is_small:")
}
