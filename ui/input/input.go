// Package input provides the composer: a multi-line textarea with history
// and staged file attachments. Opening it shrinks the transcript viewport,
// so its height is part of the layout.
//
// Features:
//   - Multi-line textarea (alt+enter inserts newline, enter submits)
//   - Command history (up/down when single-line)
//   - File attachment chips (ui/attachments), ctrl+x to remove
//   - Character-count indicator when approaching limit
package input

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/attachments"
)

const (
	charLimit     = 4000
	charWarnAt    = 3500 // show counter once this many chars are used
	maxTextHeight = 6
)

// Model wraps a textarea for multi-line input with history and attachments.
type Model struct {
	ta         textarea.Model
	history    []string
	historyIdx int
	width      int
	multiline  bool
	attachs    attachments.Model
}

// New returns a configured input Model ready for use.
func New() Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.Placeholder = "Ask anything · /attach <path> to add a file"
	ta.CharLimit = charLimit
	ta.ShowLineNumbers = false
	ta.SetWidth(76)
	ta.SetHeight(1)
	ta.MaxHeight = maxTextHeight

	// Strip cursor-line highlight to keep single-line look.
	s := ta.Styles()
	s.Focused.CursorLine = lipgloss.NewStyle()
	s.Blurred.CursorLine = lipgloss.NewStyle()
	ta.SetStyles(s)

	// Alt+Enter inserts a newline; bare Enter is intercepted by the parent
	// model to trigger submission.
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	return Model{
		ta:      ta,
		width:   80,
		attachs: attachments.New(),
	}
}

// SetWidth constrains the input area to the given width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.ta.SetWidth(max(10, w-4)) // prompt + right margin
	m.attachs.SetWidth(w)
}

// Focus grants keyboard focus to the textarea and returns the init command.
func (m *Model) Focus() tea.Cmd { return m.ta.Focus() }

// Blur removes keyboard focus from the textarea.
func (m *Model) Blur() { m.ta.Blur() }

// IsFocused reports whether the textarea currently has keyboard focus.
func (m Model) IsFocused() bool { return m.ta.Focused() }

// Value returns the current textarea content.
func (m Model) Value() string { return m.ta.Value() }

// SetValue sets the textarea content and recalculates height.
func (m *Model) SetValue(s string) {
	m.ta.SetValue(s)
	m.updateHeight()
}

// Reset clears the input and resets history navigation.
func (m *Model) Reset() {
	m.historyIdx = len(m.history)
	m.ta.SetValue("")
	m.multiline = false
	m.ta.SetHeight(1)
}

// Submit records text in history and then resets the input.
func (m *Model) Submit(text string) {
	if text != "" {
		m.history = append(m.history, text)
	}
	m.Reset()
}

// AttachFile stages a file for the next message.
func (m *Model) AttachFile(path string) error { return m.attachs.Add(path) }

// TakeAttachments returns the staged files and clears them.
func (m *Model) TakeAttachments() []attachments.Attachment { return m.attachs.Take() }

// Attachments returns the staged files.
func (m Model) Attachments() []attachments.Attachment { return m.attachs.Items() }

// InDeleteMode reports whether the attachment strip owns the keyboard.
func (m Model) InDeleteMode() bool { return m.attachs.InDeleteMode() }

// Height is the number of rows View occupies.
func (m Model) Height() int {
	h := 1 + m.ta.Height() // separator + text
	if !m.attachs.IsEmpty() {
		h++
	}
	return h
}

// Update handles messages. Key events are tea.KeyPressMsg in bubbletea v2.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.attachs.InDeleteMode() {
		var cmd tea.Cmd
		m.attachs, cmd = m.attachs.Update(msg)
		return m, cmd
	}

	if kp, ok := msg.(tea.KeyPressMsg); ok {
		switch {
		case kp.String() == "ctrl+x":
			m.attachs.EnterDeleteMode()
			return m, nil
		case kp.Code == tea.KeyUp && !m.multiline:
			m = m.navigateHistory(-1)
			return m, nil
		case kp.Code == tea.KeyDown && !m.multiline:
			m = m.navigateHistory(+1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	m.updateHeight()
	return m, cmd
}

// View renders the attachment strip, a separator and the prompt line.
func (m Model) View(p style.Palette) string {
	w := m.width
	if w < 10 {
		w = 80
	}

	var sb strings.Builder
	if !m.attachs.IsEmpty() {
		sb.WriteString(m.attachs.View(p))
		sb.WriteByte('\n')
	}
	sb.WriteString(p.Separator.Render(strings.Repeat("─", w)))
	sb.WriteByte('\n')

	prompt := p.Faint.Render("❯ ")
	if m.ta.Focused() {
		prompt = p.PromptChar.Render("❯ ")
	}
	sb.WriteString(prompt)
	sb.WriteString(m.ta.View())
	if hint := m.hintText(p); hint != "" {
		sb.WriteString(hint)
	}
	return sb.String()
}

func (m Model) hintText(p style.Palette) string {
	val := m.ta.Value()
	if m.multiline {
		lines := strings.Count(val, "\n") + 1
		return " " + p.Faint.Render(fmt.Sprintf("[%d lines · alt+enter newline]", lines))
	}
	chars := len([]rune(val))
	if chars >= charWarnAt {
		cs := p.StatusNotice
		if charLimit-chars <= 50 {
			cs = p.ErrorText
		}
		return " " + cs.Render(fmt.Sprintf("%d/%d", chars, charLimit))
	}
	return ""
}

// updateHeight adjusts textarea height based on newline count.
func (m *Model) updateHeight() {
	val := m.ta.Value()
	m.multiline = strings.Contains(val, "\n")
	if m.multiline {
		m.ta.SetHeight(min(strings.Count(val, "\n")+1, maxTextHeight))
	} else {
		m.ta.SetHeight(1)
	}
}

// navigateHistory moves through history by delta (-1 older, +1 newer).
func (m Model) navigateHistory(delta int) Model {
	if len(m.history) == 0 {
		return m
	}
	next := min(max(m.historyIdx+delta, 0), len(m.history))
	m.historyIdx = next
	if next == len(m.history) {
		m.ta.SetValue("")
	} else {
		m.ta.SetValue(m.history[next])
	}
	m.updateHeight()
	return m
}
