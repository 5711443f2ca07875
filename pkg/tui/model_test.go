package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/sequence"
)

func quietContext() context.Context {
	return logging.WithLogger(context.Background(), zerolog.Nop())
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	load := func(ctx context.Context) (*registry.Registry, []registry.Diagnostic) {
		m := registry.NewGoModule("test_math").
			Register("add_positive", func(a, b int) bool { return a+b > 0 }, "a", "b").
			Register("echo", func(msg string) string { return msg }, "msg")
		return registry.Reload(ctx, []registry.Source{m})
	}
	return NewModel(quietContext(), load, nil)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelAddsFromCatalog(t *testing.T) {
	m := newTestModel(t)
	require.Len(t, m.catalog, 2)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("f"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("e"))

	assert.Equal(t, []string{
		"1. test_math.add_positive",
		"2. for",
		"3. test_math.echo",
		"4. end",
	}, m.Sequence().RenderSummary())
	assert.Equal(t, 3, m.seqSel)
}

func TestModelEditParamsAndRun(t *testing.T) {
	m := newTestModel(t)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneSequence, m.focus)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.editing)
	m = send(m, runes("2"), tea.KeyMsg{Type: tea.KeyEnter}, runes("3"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)

	st, err := m.Sequence().At(0)
	require.NoError(t, err)
	fs := st.(*sequence.FunctionStep)
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, fs.Params())

	next, cmd := m.Update(runes("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "running", m.status)

	// edits are ignored mid-run
	m = send(m, runes("d"))
	assert.Equal(t, 1, m.Sequence().Len())

	m = send(m, m.runSequence()())
	assert.Equal(t, "done", m.status)
	require.NotNil(t, m.last)
	assert.True(t, m.last.OK())
	assert.Equal(t, engine.KindSuccess, m.results[fs.ID()].Kind)
	assert.Contains(t, m.View(), "✓")
}

func TestModelEditorCancelKeepsSavedValues(t *testing.T) {
	m := newTestModel(t)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(m, runes("7"), tea.KeyMsg{Type: tea.KeyTab}, runes("9"), tea.KeyMsg{Type: tea.KeyEsc})

	st, _ := m.Sequence().At(0)
	fs := st.(*sequence.FunctionStep)
	assert.Equal(t, "7", fs.Param("a"))
	assert.Equal(t, "", fs.Param("b"))
}

func TestModelControlMarkerHasNoEditor(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("i"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.Contains(t, m.message, "no parameters")
}

func TestModelReorderRemoveClear(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("i"), runes("f"), runes("e"), tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 2, m.seqSel)

	m = send(m, runes("K"))
	assert.Equal(t, []string{"1. if", "2. end", "3. for"}, m.Sequence().RenderSummary())
	assert.Equal(t, 1, m.seqSel)

	m = send(m, runes("d"))
	assert.Equal(t, []string{"1. if", "2. for"}, m.Sequence().RenderSummary())

	m = send(m, runes("c"))
	assert.Equal(t, 0, m.Sequence().Len())
	assert.Contains(t, m.View(), "(empty")
}

func TestModelRunFailures(t *testing.T) {
	m := newTestModel(t)
	m.seq.Append(sequence.NewFunctionStep("test_math", "missing"))
	m.seq.Append(sequence.NewFunctionStep("test_math", "add_positive"))

	m = send(m, m.runSequence()())
	assert.False(t, m.last.OK())
	kinds := []engine.Kind{m.last.Results[0].Kind, m.last.Results[1].Kind}
	assert.Equal(t, []engine.Kind{engine.KindNotFound, engine.KindArgumentError}, kinds)
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
