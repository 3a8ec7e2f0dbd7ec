package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"couponcast/present"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	redeemStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	noRedeemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	panelStyle    = lipgloss.NewStyle().Padding(0, 2)
)

const help = "↑/↓ select • ←/→ adjust • [/] adjust ×10 • r reset • q quit"

func (m *Model) View() string {
	title := titleStyle.Render("Coupon Redemption Prediction")
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.sidebar()),
		panelStyle.Render(m.summary.View()),
		panelStyle.Render(m.result()),
	)
	if m.blocking != "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", errorStyle.Render(m.blocking), "", body, "", dimStyle.Render(help)) + "\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", dimStyle.Render(help)) + "\n"
}

func (m *Model) sidebar() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Inputs") + "\n")
	for i, f := range m.fields {
		if i == m.primary {
			b.WriteString("\n" + sectionStyle.Render("Advanced") + "\n")
		}
		v, _ := m.row.Get(f.Name)
		line := fmt.Sprintf("%-24s %s", f.Label, f.Format(v))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	f := m.Selected()
	if !f.Discrete() {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("%s: %s to %s, step %s",
			f.Label, f.Format(f.Min), f.Format(f.Max), f.Format(f.Step))))
	}
	return b.String()
}

func (m *Model) result() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder
	if msg := m.message; msg != nil {
		b.WriteString(sectionStyle.Render("Prediction Result") + "\n")
		if msg.Redeem {
			b.WriteString(redeemStyle.Render(msg.Headline) + "\n")
		} else {
			b.WriteString(noRedeemStyle.Render(msg.Headline) + "\n")
		}
		if msg.Probability != nil {
			b.WriteString("\nProbability of Redemption\n")
			b.WriteString(m.bar.ViewAs(*msg.Probability) + " " + msg.ProbabilityText + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render("Features that most influence redemption") + "\n")
	for _, a := range m.advice {
		b.WriteString("• " + a.String() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(present.Tip))
	return b.String()
}
