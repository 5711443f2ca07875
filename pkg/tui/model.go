package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/render"
	"github.com/ormasoftchile/tseq/pkg/sequence"
	"github.com/ormasoftchile/tseq/pkg/signature"
	"github.com/ormasoftchile/tseq/pkg/trace"
)

type pane int

const (
	paneCatalog pane = iota
	paneSequence
)

// Model is the Bubble Tea model for the sequence composer.
type Model struct {
	ctx    context.Context
	load   registry.Loader
	reg    *registry.Registry
	diags  []registry.Diagnostic
	seq    *sequence.Sequence
	trace  *trace.Writer
	logger zerolog.Logger

	catalog []*registry.FunctionEntry
	focus   pane
	catSel  int
	seqSel  int

	editing  bool
	editStep *sequence.FunctionStep
	editSig  signature.Signature
	editIdx  int
	input    textinput.Model

	status  string // "idle", "running", "done"
	spinner spinner.Model
	results map[sequence.StepID]engine.StepResult
	last    *engine.Trace
	message string
	width   int
	height  int
}

// NewModel loads the registry and returns a model with an empty sequence.
// Runs stream trace events to tw when it is not nil.
func NewModel(ctx context.Context, load registry.Loader, tw *trace.Writer) Model {
	in := textinput.New()
	in.Prompt = "= "
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		load:    load,
		seq:     sequence.New(),
		trace:   tw,
		logger:  logging.FromContext(ctx, "tui"),
		input:   in,
		spinner: sp,
		status:  "idle",
		results: make(map[sequence.StepID]engine.StepResult),
	}
	m.reload()
	return m
}

// Sequence returns the sequence being composed.
func (m Model) Sequence() *sequence.Sequence { return m.seq }

func (m *Model) reload() {
	m.reg, m.diags = m.load(m.ctx)
	m.catalog = m.reg.Entries()
	if m.catSel >= len(m.catalog) {
		m.catSel = max(0, len(m.catalog)-1)
	}
	m.message = fmt.Sprintf("%d test functions, %d load errors", len(m.catalog), len(m.diags))
}

// --- Messages ---

// runCompleteMsg signals run completion.
type runCompleteMsg struct {
	Trace *engine.Trace
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.status != "running" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runCompleteMsg:
		m.status = "done"
		m.last = msg.Trace
		m.results = make(map[sequence.StepID]engine.StepResult, len(msg.Trace.Results))
		for _, r := range msg.Trace.Results {
			m.results[r.StepID] = r
		}
		m.message = render.Tally(msg.Trace)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}
	if m.status == "running" {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Switch):
		if m.focus == paneCatalog {
			m.focus = paneSequence
		} else {
			m.focus = paneCatalog
		}
	case key.Matches(msg, keys.Up):
		if m.focus == paneCatalog && m.catSel > 0 {
			m.catSel--
		} else if m.focus == paneSequence && m.seqSel > 0 {
			m.seqSel--
		}
	case key.Matches(msg, keys.Down):
		if m.focus == paneCatalog && m.catSel < len(m.catalog)-1 {
			m.catSel++
		} else if m.focus == paneSequence && m.seqSel < m.seq.Len()-1 {
			m.seqSel++
		}
	case key.Matches(msg, keys.Select):
		if m.focus == paneCatalog {
			m.addSelected()
		} else {
			m.openEditor()
		}
	case key.Matches(msg, keys.If):
		m.drop(string(sequence.ControlIf))
	case key.Matches(msg, keys.For):
		m.drop(string(sequence.ControlFor))
	case key.Matches(msg, keys.End):
		m.drop(string(sequence.ControlEnd))
	case key.Matches(msg, keys.Remove):
		if m.focus == paneSequence {
			if st, err := m.seq.RemoveAt(m.seqSel); err == nil {
				delete(m.results, st.ID())
				m.message = "removed " + st.Label()
				m.seqSel = min(m.seqSel, max(0, m.seq.Len()-1))
			}
		}
	case key.Matches(msg, keys.MoveUp):
		if m.focus == paneSequence && m.seq.Move(m.seqSel, m.seqSel-1) == nil {
			m.seqSel--
		}
	case key.Matches(msg, keys.MoveDown):
		if m.focus == paneSequence && m.seq.Move(m.seqSel, m.seqSel+1) == nil {
			m.seqSel++
		}
	case key.Matches(msg, keys.Clear):
		m.seq.Clear()
		m.seqSel = 0
		m.results = make(map[sequence.StepID]engine.StepResult)
		m.message = "sequence cleared"
	case key.Matches(msg, keys.Reload):
		m.reload()
	case key.Matches(msg, keys.Run):
		m.status = "running"
		m.message = ""
		return m, tea.Batch(m.spinner.Tick, m.runSequence())
	}
	return m, nil
}

func (m *Model) addSelected() {
	if m.catSel >= len(m.catalog) {
		return
	}
	e := m.catalog[m.catSel]
	m.drop(sequence.FunctionRef{Function: e.Name, Module: e.Module})
}

func (m *Model) drop(payload any) {
	if st, ok := m.seq.Drop(payload); ok {
		m.seqSel = m.seq.Len() - 1
		m.message = "added " + st.Label()
	}
}

// runSequence executes the sequence off the UI goroutine. The sequence is not
// edited until runCompleteMsg arrives.
func (m Model) runSequence() tea.Cmd {
	eng := engine.New(m.reg, engine.RunConfig{Trace: m.trace, Logger: &m.logger})
	ctx, seq := m.ctx, m.seq
	return func() tea.Msg {
		return runCompleteMsg{Trace: eng.Run(ctx, seq)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("tseq"))
	b.WriteString("\n")

	half := 0
	if m.width > 0 {
		half = m.width/2 - 2
	}
	left := m.panel("Catalog", m.catalogLines(), m.focus == paneCatalog, half)
	right := m.panel("Sequence", m.sequenceLines(), m.focus == paneSequence, half)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.editorView())
		b.WriteString("\n")
	}

	switch m.status {
	case "running":
		b.WriteString(" " + m.spinner.View() + " Running...")
	default:
		b.WriteString(" " + m.message)
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(statusStyle.Render(" " + helpLine(edit.Save, edit.Next, edit.Cancel)))
	} else {
		b.WriteString(statusStyle.Render(" " + helpLine(keys.Switch, keys.Select, keys.If, keys.For, keys.End,
			keys.Remove, keys.MoveUp, keys.MoveDown, keys.Run, keys.Clear, keys.Reload, keys.Quit)))
	}
	return b.String()
}

func (m Model) panel(title string, lines []string, focused bool, width int) string {
	style := panelBorder
	if focused {
		style = panelFocused
	}
	if width > 0 {
		style = style.Width(width)
	}
	body := panelTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Render(body)
}

func (m Model) catalogLines() []string {
	var lines []string
	module := ""
	for i, e := range m.catalog {
		if e.Module != module {
			module = e.Module
			lines = append(lines, moduleStyle.Render(module))
		}
		line := "  " + e.Name + " " + statusStyle.Render(e.Signature.String())
		if i == m.catSel && m.focus == paneCatalog {
			line = selectedStyle.Render("▸ " + e.Name)
		}
		lines = append(lines, line)
	}
	if len(m.catalog) == 0 {
		lines = append(lines, statusStyle.Render("(no test functions)"))
	}
	for _, d := range m.diags {
		lines = append(lines, render.ErrorStyle.Render(render.GlyphFailed+" "+d.Module))
	}
	return lines
}

func (m Model) sequenceLines() []string {
	var lines []string
	for i, st := range m.seq.Steps() {
		glyph := render.GlyphPending
		suffix := ""
		if r, ok := m.results[st.ID()]; ok {
			glyph = render.KindStyle(r.Kind).Render(render.Glyph(r.Kind))
			if r.Message != "" && r.Kind != engine.KindControlMarker {
				suffix = " " + statusStyle.Render(r.Message)
			}
		}
		line := fmt.Sprintf("%s %d. %s", glyph, i+1, st.Label())
		if i == m.seqSel && m.focus == paneSequence {
			line = selectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line+suffix)
	}
	if m.seq.Len() == 0 {
		lines = append(lines, statusStyle.Render("(empty: enter adds from the catalog)"))
	}
	return lines
}
