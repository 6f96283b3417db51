package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Shared styles for command output. Major steps are framed in a rounded
// panel whose border color signals the outcome; minor lines reuse the
// foreground colors directly.
var (
	logoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	bannerStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 2)
	infoPanel    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("86")).Padding(0, 2)
	successPanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 2)
	warnPanel    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 2)
	errorPanel   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 2)

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const logo = `__     ___     _            _     _
\ \   / (_) __| | ___  ___ | |   (_)_ __   __ _  ___
 \ \ / /| |/ _' |/ _ \/ _ \| |   | | '_ \ / _' |/ _ \
  \ V / | | (_| |  __/ (_) | |___| | | | | (_| | (_) |
   \_/  |_|\__,_|\___|\___/|_____|_|_| |_|\__, |\___/
                                          |___/`

func printBanner(tagline string) {
	body := logoStyle.Render(logo)
	if tagline != "" {
		body += "\n\n" + helpStyle.Render(tagline)
	}
	fmt.Println(bannerStyle.Render(body))
}

func panelInfo(text string)    { fmt.Println(infoPanel.Render(text)) }
func panelSuccess(text string) { fmt.Println(successPanel.Render(text)) }
func panelWarn(text string)    { fmt.Println(warnPanel.Render(text)) }
func panelError(text string)   { fmt.Println(errorPanel.Render(text)) }

func infoLine(text string)    { fmt.Println(infoStyle.Render(text)) }
func successLine(text string) { fmt.Println(successStyle.Render(text)) }
func warnLine(text string)    { fmt.Println(warnStyle.Render(text)) }
func helpLine(text string)    { fmt.Println(helpStyle.Render(text)) }

// padRight pads s with spaces to the given display width. Widths are
// measured in terminal cells so CJK labels from the zh locale line up
// with their ASCII counterparts.
func padRight(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
