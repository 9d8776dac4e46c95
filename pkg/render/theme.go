package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/aide/pkg/colors"
	"github.com/harrisonrobin/aide/pkg/settings"
)

// Category palettes indexed by slot; slot 0 is the neutral color.
var (
	lightPalette = []string{"240", "25", "28", "130", "90", "124", "30", "94", "55"}
	darkPalette  = []string{"245", "75", "114", "214", "177", "203", "80", "180", "141"}
	// High contrast trades hue variety for legibility.
	contrastLight = []string{"0", "19", "22", "52", "53", "88", "23", "58", "17"}
	contrastDark  = []string{"15", "51", "46", "226", "201", "196", "87", "229", "159"}
)

// Theme carries the styles for one output stream.
type Theme struct {
	r       *lipgloss.Renderer
	palette []string
	slots   *colors.SlotCache

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Done    lipgloss.Style
	Heading lipgloss.Style
	Warn    lipgloss.Style
}

// NewTheme builds styles for w from the user's settings. slots may be nil,
// in which case every category uses the neutral color.
func NewTheme(w io.Writer, s settings.Settings, slots *colors.SlotCache) *Theme {
	r := lipgloss.NewRenderer(w)
	r.SetHasDarkBackground(s.DarkMode)

	t := &Theme{r: r, slots: slots}
	switch {
	case s.HighContrast && s.DarkMode:
		t.palette = contrastDark
	case s.HighContrast:
		t.palette = contrastLight
	case s.DarkMode:
		t.palette = darkPalette
	default:
		t.palette = lightPalette
	}

	fg := lipgloss.Color(t.palette[0])
	t.Title = r.NewStyle()
	t.Muted = r.NewStyle().Foreground(fg)
	t.Done = r.NewStyle().Foreground(fg).Strikethrough(true)
	t.Heading = r.NewStyle().Bold(true).Underline(true)
	t.Warn = r.NewStyle().Bold(true).Foreground(lipgloss.Color(t.palette[5]))
	if s.HighContrast {
		t.Title = t.Title.Bold(true)
		t.Done = t.Done.Faint(false)
	} else if s.DarkMode {
		t.Muted = t.Muted.Faint(true)
	}
	return t
}

func (t *Theme) category(name string) lipgloss.Style {
	slot := 0
	if t.slots != nil {
		slot = t.slots.Slot(name)
	}
	if slot < 0 || slot >= len(t.palette) {
		slot = 0
	}
	return t.r.NewStyle().Foreground(lipgloss.Color(t.palette[slot]))
}
