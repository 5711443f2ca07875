package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// openEditor starts editing the parameters of the selected call step.
// Values are written back to the step itself, so they survive moving the
// selection, reordering and reloading.
func (m *Model) openEditor() {
	st, err := m.seq.At(m.seqSel)
	if err != nil {
		return
	}
	fs, ok := st.(*sequence.FunctionStep)
	if !ok {
		m.message = st.Label() + " markers have no parameters"
		return
	}
	entry, ok := m.reg.Lookup(fs.Module(), fs.Function())
	if !ok {
		m.message = fs.Label() + " not found"
		return
	}
	if len(entry.Signature.Params) == 0 {
		m.message = fs.Label() + " takes no parameters"
		return
	}
	m.editing = true
	m.editStep = fs
	m.editSig = entry.Signature
	m.editIdx = 0
	m.loadField()
}

func (m *Model) loadField() {
	p := m.editSig.Params[m.editIdx]
	m.input.SetValue(m.editStep.Param(p.Name))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) saveField() {
	p := m.editSig.Params[m.editIdx]
	m.editStep.SetParam(p.Name, m.input.Value())
}

func (m *Model) closeEditor() {
	m.editing = false
	m.editStep = nil
	m.input.Blur()
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, edit.Cancel):
		m.closeEditor()
		return m, nil
	case key.Matches(msg, edit.Next):
		m.saveField()
		m.editIdx = (m.editIdx + 1) % len(m.editSig.Params)
		m.loadField()
		return m, nil
	case key.Matches(msg, edit.Save):
		m.saveField()
		if m.editIdx == len(m.editSig.Params)-1 {
			m.closeEditor()
			m.message = "parameters saved"
			return m, nil
		}
		m.editIdx++
		m.loadField()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) editorView() string {
	var b strings.Builder
	b.WriteString(panelTitle.Render(" " + m.editStep.Label()))
	for i, pv := range m.editStep.VisibleParams(m.editSig) {
		b.WriteString("\n")
		label := fmt.Sprintf("   %s (%s) ", pv.Name, pv.Type)
		if i == m.editIdx {
			b.WriteString(selectedStyle.Render(label) + m.input.View())
		} else {
			b.WriteString(label + statusStyle.Render(fmt.Sprintf("= %q", pv.Value)))
		}
	}
	return b.String()
}
