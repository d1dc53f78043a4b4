// Package attachments holds the files staged in the composer before a
// message is sent, rendered as a row of chips. ctrl+x in the composer puts
// the row into delete mode, where a cursor picks the chip to drop.
package attachments

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/miosa/osa-transcript/style"
)

// FileType picks the chip icon.
type FileType int

const (
	FileText FileType = iota
	FileImage
	FileCode
	FileBinary
)

var fileTypes = map[string]FileType{}

func init() {
	groups := map[FileType]string{
		FileCode:   ".go .py .js .ts .ex .exs .rb .rs .c .cpp .h .java .swift .kt",
		FileImage:  ".png .jpg .jpeg .gif .webp .svg .bmp .tiff",
		FileBinary: ".zip .tar .gz .bin .exe .dll .so .dylib",
	}
	for ft, exts := range groups {
		for _, ext := range strings.Fields(exts) {
			fileTypes[ext] = ft
		}
	}
}

var icons = map[FileType]string{
	FileText:   "📄",
	FileImage:  "🖼",
	FileCode:   "📎",
	FileBinary: "📦",
}

// Attachment is one staged file. ID travels with the sent message so a
// chip click in the transcript can name it.
type Attachment struct {
	ID       string
	Path     string
	Name     string
	Size     int64
	FileType FileType
}

// RemovedMsg reports a chip dropped in delete mode.
type RemovedMsg struct{ ID string }

type keyMap struct {
	Prev, Next, Remove, Done key.Binding
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h")),
	Next:   key.NewBinding(key.WithKeys("right", "l")),
	Remove: key.NewBinding(key.WithKeys("enter", "x", "delete", "backspace")),
	Done:   key.NewBinding(key.WithKeys("esc")),
}

// Model is the staged file row. cursor is -1 outside delete mode.
type Model struct {
	items  []Attachment
	cursor int
	width  int
}

// New returns an empty row.
func New() Model {
	return Model{cursor: -1, width: 80}
}

// Add stages the file at path. Directories, missing files and files that
// are already staged are rejected.
func (m *Model) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("attachments: resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	switch {
	case err != nil:
		return fmt.Errorf("attachments: stat %q: %w", abs, err)
	case info.IsDir():
		return fmt.Errorf("attachments: %q is a directory", abs)
	case slices.ContainsFunc(m.items, func(a Attachment) bool { return a.Path == abs }):
		return fmt.Errorf("attachments: %q already attached", abs)
	}
	m.items = append(m.items, Attachment{
		ID:       uuid.NewString(),
		Path:     abs,
		Name:     info.Name(),
		Size:     info.Size(),
		FileType: detectFileType(abs),
	})
	return nil
}

// Take hands over the staged files and empties the row.
func (m *Model) Take() []Attachment {
	out := m.items
	m.items = nil
	m.cursor = -1
	return out
}

func (m *Model) SetWidth(w int) { m.width = w }

func (m Model) Items() []Attachment { return m.items }
func (m Model) Count() int          { return len(m.items) }
func (m Model) IsEmpty() bool       { return len(m.items) == 0 }

// EnterDeleteMode puts the cursor on the first chip. It does nothing when
// the row is empty.
func (m *Model) EnterDeleteMode() {
	if len(m.items) > 0 {
		m.cursor = 0
	}
}

func (m Model) InDeleteMode() bool { return m.cursor >= 0 }

// Update moves the delete cursor, drops the chip under it, or leaves delete
// mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kp, ok := msg.(tea.KeyPressMsg)
	if !ok || !m.InDeleteMode() {
		return m, nil
	}
	switch {
	case key.Matches(kp, keys.Prev):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(kp, keys.Next):
		m.cursor = min(len(m.items)-1, m.cursor+1)
	case key.Matches(kp, keys.Remove):
		id := m.items[m.cursor].ID
		m.items = slices.Delete(m.items, m.cursor, m.cursor+1)
		m.cursor = min(m.cursor, len(m.items)-1)
		return m, func() tea.Msg { return RemovedMsg{ID: id} }
	case key.Matches(kp, keys.Done):
		m.cursor = -1
	}
	return m, nil
}

// View renders the chip row, or "" when nothing is staged.
func (m Model) View(p style.Palette) string {
	if len(m.items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.Faint.Render("  Attachments: "))
	for i, a := range m.items {
		if i > 0 {
			sb.WriteString(" " + p.Faint.Render("|") + " ")
		}
		label := fmt.Sprintf("%s %s (%s)", icons[a.FileType], truncateName(a.Name, 20), humanSize(a.Size))
		labelStyle, mark := p.Faint, p.Faint.Render("×")
		if m.InDeleteMode() {
			mark = p.Faint.Render("[x]")
			if i == m.cursor {
				labelStyle, mark = p.UserLabel, p.ErrorText.Render("[x]")
			}
		}
		sb.WriteString(labelStyle.Render(label) + " " + mark)
	}
	return sb.String()
}

func detectFileType(path string) FileType {
	return fileTypes[strings.ToLower(filepath.Ext(path))]
}

func truncateName(name string, n int) string {
	r := []rune(name)
	if len(r) <= n {
		return name
	}
	return string(r[:n-1]) + "…"
}

func humanSize(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(b)/(1<<10))
	}
	return fmt.Sprintf("%dB", b)
}
