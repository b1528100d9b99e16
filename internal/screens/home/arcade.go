package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/screens/welcome"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// renderTitle returns the banner, or its compact fallback.
func renderTitle(cw int, compact bool) string {
	bw := cw
	if compact {
		bw = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(welcome.RenderBanner(bw))
}

// renderStatsBar renders the saved-input counts in a bordered box.
func renderStatsBar(inputs, imageSets int, ai bool, cw int, compact bool) string {
	inputStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	imageStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	aiStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	aiText := aiStyle.Render("⚡ AI 已就緒")
	if !ai {
		aiText = dimStyle.Render("⚡ 未設定 AI")
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s",
			inputStyle.Render(fmt.Sprintf("★%d", inputs)),
			imageStyle.Render(fmt.Sprintf("◆%d", imageSets)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			inputStyle.Render(fmt.Sprintf("★ %d 筆紀錄", inputs)),
			imageStyle.Render(fmt.Sprintf("◆ %d 組圖片", imageSets)),
			aiText,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.ArcadeYellow).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ArcadeYellow).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	disabledBtn := normalBtn.Foreground(theme.TextDim)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as plain lines for small
// terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// MsgNoAnalyzer is the banner shown when no LLM provider is configured.
const MsgNoAnalyzer = "⚠ 請先設定 LLM API 金鑰才能解析內容（請見 cihui --help）"

func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render(MsgNoAnalyzer)
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderUpdateNote renders a dim one-line update notification.
func renderUpdateNote(latestVersion string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("有新版本 %s 可以更新", latestVersion))
}
