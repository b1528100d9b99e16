package components

import (
	"fmt"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/theme"
)

// MultiChoice is a numbered option list. It tracks the cursor; the
// caller decides correctness and reveals the answer.
type MultiChoice struct {
	Options []string
	Cursor  int

	// Chosen and Answer are shown once Revealed is set.
	Chosen   string
	Answer   string
	Revealed bool
}

// NewMultiChoice creates a multiple-choice list over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Update moves the cursor. It returns the chosen option when enter or a
// number key picks one, and ok reports whether a pick happened.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, string, bool) {
	if m.Revealed {
		return m, "", false
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, "", false
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter":
		if m.Cursor < len(m.Options) {
			return m, m.Options[m.Cursor], true
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Options) {
			m.Cursor = n - 1
			return m, m.Options[n-1], true
		}
	}
	return m, "", false
}

// Reveal locks the list and marks chosen against answer.
func (m *MultiChoice) Reveal(chosen, answer string) {
	m.Chosen = chosen
	m.Answer = answer
	m.Revealed = true
}

// View renders the options.
func (m MultiChoice) View() string {
	var s string
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		switch {
		case m.Revealed && opt == m.Answer:
			s += lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line+"  ✓") + "\n"
		case m.Revealed && opt == m.Chosen:
			s += lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line+"  ✗") + "\n"
		case m.Revealed:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		case i == m.Cursor:
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}
	return s
}
