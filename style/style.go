package style

import (
	"charm.land/lipgloss/v2"
)

// Palette holds every style derived from a Theme. It is built once per theme
// change and passed explicitly to the components that draw with it.
type Palette struct {
	Theme Theme

	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Transcript
	UserLabel       lipgloss.Style
	AgentLabel      lipgloss.Style
	UserBorder      lipgloss.Style
	AgentBorder     lipgloss.Style
	ArchivedBorder  lipgloss.Style
	Archived        lipgloss.Style
	Separator       lipgloss.Style
	Loading         lipgloss.Style
	ThinkingHeader  lipgloss.Style
	ThinkingContent lipgloss.Style
	ThinkingBox     lipgloss.Style
	Chip            lipgloss.Style
	ChipRemove      lipgloss.Style

	// Scrollbar
	ScrollThumb lipgloss.Style
	ScrollTrack lipgloss.Style

	// Welcome
	WelcomeTitle lipgloss.Style
	WelcomeMeta  lipgloss.Style
	WelcomeTip   lipgloss.Style
	SignIn       lipgloss.Style

	// Host chrome
	PromptChar   lipgloss.Style
	InputBorder  lipgloss.Style
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusNotice lipgloss.Style
	Spinner      lipgloss.Style
}

// NewPalette builds the styles for t.
func NewPalette(t Theme) Palette {
	thick := func() lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			PaddingLeft(1)
	}
	p := Palette{Theme: t}

	p.Bold = lipgloss.NewStyle().Bold(true)
	p.Faint = lipgloss.NewStyle().Foreground(t.Muted)
	p.ErrorText = lipgloss.NewStyle().Foreground(t.Error).Bold(true)

	p.UserLabel = lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)
	p.AgentLabel = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	p.UserBorder = thick().BorderForeground(t.MsgBorderUser)
	p.AgentBorder = thick().BorderForeground(t.MsgBorderAgent)
	p.ArchivedBorder = thick().BorderForeground(t.MsgBorderArchived)
	p.Archived = lipgloss.NewStyle().Foreground(t.Muted).Faint(true)
	p.Separator = lipgloss.NewStyle().Foreground(t.Dim)
	p.Loading = lipgloss.NewStyle().Foreground(t.Primary).Italic(true)
	p.ThinkingHeader = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	p.ThinkingContent = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	p.ThinkingBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Warning).
		PaddingLeft(1)
	p.Chip = lipgloss.NewStyle().Background(t.SelectionBg).Padding(0, 1)
	p.ChipRemove = lipgloss.NewStyle().Background(t.SelectionBg).Foreground(t.Error)

	p.ScrollThumb = lipgloss.NewStyle().Foreground(t.Primary)
	p.ScrollTrack = lipgloss.NewStyle().Foreground(t.Dim)

	p.WelcomeTitle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	p.WelcomeMeta = lipgloss.NewStyle().Foreground(t.Muted)
	p.WelcomeTip = lipgloss.NewStyle().Foreground(t.Dim)
	p.SignIn = lipgloss.NewStyle().Foreground(t.Secondary).Underline(true)

	p.PromptChar = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	p.InputBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	p.StatusBar = lipgloss.NewStyle().Foreground(t.Muted)
	p.StatusKey = lipgloss.NewStyle().Foreground(t.Secondary)
	p.StatusNotice = lipgloss.NewStyle().Foreground(t.Warning)
	p.Spinner = lipgloss.NewStyle().Foreground(t.Primary)
	return p
}
