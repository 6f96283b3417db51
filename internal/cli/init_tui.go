package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/i18n"
)

var (
	wizardTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	wizardStepStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	wizardSelectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	wizardUnselectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	wizardCursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	wizardHelpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	wizardInputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	wizardInputCursor     = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	wizardLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(14)
	wizardValueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	wizardContainerStyle  = lipgloss.NewStyle().Padding(2, 4)
)

type wizardModel struct {
	currentStep int
	cursor      int
	config      *config.Config
	confirmed   bool
	cancelled   bool
	inputBuffer string
	width       int
	height      int
}

func newWizardModel(cfg *config.Config) wizardModel {
	m := wizardModel{
		currentStep: 0,
		cursor:      0,
		config:      cfg,
	}

	// Set initial cursor position for language
	m.setCursorFromConfig()

	return m
}

func (m *wizardModel) t() *i18n.Translations {
	return i18n.T(m.config.Language)
}

func (m *wizardModel) getStepTitle() string {
	t := m.t()
	switch m.currentStep {
	case 0:
		return t.Wizard.Language
	case 1:
		return t.Wizard.AppDir
	case 2:
		return t.Wizard.Torch
	case 3:
		return t.Wizard.Port
	case 4:
		return t.Wizard.Confirm
	}
	return ""
}

func (m *wizardModel) getStepDescription() string {
	t := m.t()
	switch m.currentStep {
	case 0:
		return t.Wizard.LanguageDesc
	case 1:
		return t.Wizard.AppDirDesc
	case 2:
		return t.Wizard.TorchDesc
	case 3:
		return t.Wizard.PortDesc
	case 4:
		return t.Wizard.ConfirmDesc
	}
	return ""
}

func (m *wizardModel) getOptions() []struct{ label, value string } {
	t := m.t()
	switch m.currentStep {
	case 0:
		opts := make([]struct{ label, value string }, len(i18n.SupportedLanguages))
		for i, lang := range i18n.SupportedLanguages {
			opts[i] = struct{ label, value string }{lang.Name, lang.Code}
		}
		return opts
	case 2:
		return []struct{ label, value string }{
			{t.Wizard.TorchAuto, config.TorchAuto},
			{t.Wizard.TorchCUDA, config.TorchCUDA},
			{t.Wizard.TorchCPU, config.TorchCPU},
		}
	case 4:
		return []struct{ label, value string }{
			{t.Wizard.YesSave, "yes"},
			{t.Wizard.NoCancel, "no"},
		}
	}
	return nil
}

func (m *wizardModel) isInputStep() bool {
	return m.currentStep == 1 || m.currentStep == 3 // app dir and port are typed in
}

func (m *wizardModel) setCursorFromConfig() {
	if m.isInputStep() {
		switch m.currentStep {
		case 1:
			if m.config.AppDir != "" {
				m.inputBuffer = m.config.AppDir
			} else {
				m.inputBuffer = "."
			}
		case 3:
			port := m.config.Launch.Port
			if port == 0 {
				port = 8501
			}
			m.inputBuffer = strconv.Itoa(port)
		}
		return
	}

	var currentValue string
	switch m.currentStep {
	case 0:
		currentValue = m.config.Language
	case 2:
		currentValue = m.config.Torch
	}

	options := m.getOptions()
	for i, opt := range options {
		if opt.value == currentValue {
			m.cursor = i
			break
		}
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "left":
			if m.currentStep > 0 {
				m.saveCurrentValue()
				m.currentStep--
				m.cursor = 0
				m.setCursorFromConfig()
			}
			return m, nil

		case "right", "enter":
			m.saveCurrentValue()

			if m.currentStep == 4 {
				// Confirmation step
				if m.cursor == 0 {
					m.confirmed = true
				} else {
					m.cancelled = true
				}
				return m, tea.Quit
			}

			m.currentStep++
			m.cursor = 0
			m.setCursorFromConfig()
			return m, nil

		case "up", "k":
			if !m.isInputStep() {
				options := m.getOptions()
				if m.cursor > 0 {
					m.cursor--
				} else {
					m.cursor = len(options) - 1
				}
			}
			return m, nil

		case "down", "j":
			if !m.isInputStep() {
				options := m.getOptions()
				if m.cursor < len(options)-1 {
					m.cursor++
				} else {
					m.cursor = 0
				}
			}
			return m, nil

		case "backspace":
			if m.isInputStep() && len(m.inputBuffer) > 0 {
				m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
			}
			return m, nil

		default:
			if m.isInputStep() && len(msg.String()) == 1 {
				m.inputBuffer += msg.String()
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *wizardModel) saveCurrentValue() {
	if m.isInputStep() {
		switch m.currentStep {
		case 1:
			m.config.AppDir = strings.TrimSpace(m.inputBuffer)
		case 3:
			// Keep the previous port when the input does not parse
			if port, err := strconv.Atoi(strings.TrimSpace(m.inputBuffer)); err == nil && port >= 1 && port <= 65535 {
				m.config.Launch.Port = port
			}
		}
		return
	}

	options := m.getOptions()
	if m.cursor < len(options) {
		value := options[m.cursor].value
		switch m.currentStep {
		case 0:
			m.config.Language = value
		case 2:
			m.config.Torch = value
		}
	}
}

func (m wizardModel) View() string {
	var b strings.Builder
	t := m.t()

	// Logo
	b.WriteString(logoStyle.Render(logo))
	b.WriteString("\n\n")

	// Progress indicator
	progress := fmt.Sprintf(t.Wizard.StepOf, m.currentStep+1, 5)
	b.WriteString(wizardStepStyle.Render(progress))
	b.WriteString("\n\n")

	// Title
	b.WriteString(wizardTitleStyle.Render(m.getStepTitle()))
	b.WriteString("\n")
	b.WriteString(wizardStepStyle.Render(m.getStepDescription()))
	b.WriteString("\n\n")

	// Content
	if m.currentStep == 4 {
		// Review step
		b.WriteString(m.renderReview())
		b.WriteString("\n")
	}

	if m.isInputStep() {
		// Input field
		b.WriteString(wizardInputCursor.Render("> "))
		b.WriteString(wizardInputStyle.Render(m.inputBuffer))
		b.WriteString(wizardInputCursor.Render("█"))
		b.WriteString("\n")
	} else {
		// Options
		options := m.getOptions()
		for i, opt := range options {
			cursor := "  "
			style := wizardUnselectedStyle
			if i == m.cursor {
				cursor = wizardCursorStyle.Render("> ")
				style = wizardSelectedStyle
			}
			b.WriteString(cursor)
			b.WriteString(style.Render(opt.label))
			b.WriteString("\n")
		}
	}

	// Help
	b.WriteString("\n")
	help := fmt.Sprintf("← %s • → %s • ↑↓ %s • enter %s • esc %s",
		t.Wizard.Back, t.Wizard.Next, t.Wizard.Select, t.Wizard.ConfirmKey, t.Wizard.Quit)
	b.WriteString(wizardHelpStyle.Render(help))

	// Apply padding
	content := wizardContainerStyle.Render(b.String())

	// Make it fullscreen
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content)
	}

	return content
}

func (m wizardModel) renderReview() string {
	var b strings.Builder
	t := m.t()

	appDir := m.config.AppDir
	if appDir == "" {
		appDir = "."
	}

	lines := []struct {
		label string
		value string
	}{
		{t.Wizard.Language, languageName(m.config.Language)},
		{t.Wizard.AppDir, appDir},
		{t.Wizard.Torch, m.config.Torch},
		{t.Wizard.Port, strconv.Itoa(m.config.Launch.Port)},
	}

	for _, line := range lines {
		b.WriteString(wizardLabelStyle.Render(line.label + ":"))
		b.WriteString(wizardValueStyle.Render(line.value))
		b.WriteString("\n")
	}

	return b.String()
}

// runInitWizard walks through the settings interactively and returns the
// resulting config (existing config values are used as defaults).
func runInitWizard() (*config.Config, error) {
	cfg := config.LoadOrDefault()

	m := newWizardModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(wizardModel)
	if result.cancelled {
		return nil, fmt.Errorf("configuration cancelled")
	}

	if result.config.AppDir == "" {
		result.config.AppDir = "."
	}

	return result.config, nil
}

func languageName(code string) string {
	for _, l := range i18n.SupportedLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
