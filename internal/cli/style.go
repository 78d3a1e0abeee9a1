package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/muesli/termenv"
)

// Color modes for --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var riskColors = map[domain.RiskCategory]lipgloss.Color{
	domain.RiskLow:      lipgloss.Color("42"),
	domain.RiskModerate: lipgloss.Color("220"),
	domain.RiskHigh:     lipgloss.Color("208"),
	domain.RiskExtreme:  lipgloss.Color("196"),
}

// riskStyler returns a label decorator for RenderTextStyled. In auto mode
// color is used only when w is a terminal.
func riskStyler(w io.Writer, mode string) func(domain.RiskCategory, string) string {
	if mode == ColorNever {
		return func(_ domain.RiskCategory, s string) string { return s }
	}

	r := lipgloss.NewRenderer(w)
	if mode == ColorAlways {
		r.SetColorProfile(termenv.ANSI256)
	}

	styles := make(map[domain.RiskCategory]lipgloss.Style, len(riskColors))
	for risk, color := range riskColors {
		s := r.NewStyle().Foreground(color)
		if risk >= domain.RiskHigh {
			s = s.Bold(true)
		}
		styles[risk] = s
	}
	return func(risk domain.RiskCategory, s string) string {
		return styles[risk].Render(s)
	}
}
