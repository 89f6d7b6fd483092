package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/session"
	"logbook/termbook/internal/utils"
	"logbook/termbook/internal/validation"
)

type signupField int

const (
	signupFieldName signupField = iota
	signupFieldEmail
	signupFieldPassword
	signupFieldCount
)

type SignupModel struct {
	sessions *session.Store

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	field    signupField

	loading bool
	spinner *utils.Spinner
	error   string
}

type signupResultMsg struct {
	err error
}

func NewSignupModel(sessions *session.Store) *SignupModel {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 100
	name.Focus()
	name.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 100
	email.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	password := textinput.New()
	password.Placeholder = "at least 8 characters"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	return &SignupModel{
		sessions: sessions,
		name:     name,
		email:    email,
		password: password,
		spinner:  utils.NewSpinner(),
	}
}

func (m *SignupModel) focusField() tea.Cmd {
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	switch m.field {
	case signupFieldName:
		return m.name.Focus()
	case signupFieldEmail:
		return m.email.Focus()
	default:
		return m.password.Focus()
	}
}

func (m SignupModel) Update(msg tea.Msg) (SignupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "tab", "down":
			m.field = (m.field + 1) % signupFieldCount
			return m, m.focusField()

		case "shift+tab", "up":
			m.field = (m.field + signupFieldCount - 1) % signupFieldCount
			return m, m.focusField()

		case "enter":
			if m.field != signupFieldPassword {
				m.field++
				return m, m.focusField()
			}
			return m.submit()

		case "esc":
			return m, NavigateTo(ViewLogin, nil)
		}

	case signupResultMsg:
		m.loading = false
		if msg.err != nil {
			if apiErr, ok := api.AsError(msg.err); ok {
				m.error = apiErr.UserMessage()
			} else {
				m.error = msg.err.Error()
			}
			return m, nil
		}
		// Signup applies login semantics: the session already holds a
		// token here.
		return m, func() tea.Msg { return LoggedInMsg{} }
	}

	var cmd tea.Cmd
	switch m.field {
	case signupFieldName:
		m.name, cmd = m.name.Update(msg)
	case signupFieldEmail:
		m.email, cmd = m.email.Update(msg)
	case signupFieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m SignupModel) submit() (SignupModel, tea.Cmd) {
	name := strings.TrimSpace(m.name.Value())
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if result := validation.ValidateSignup(email, password, name); !result.IsValid {
		m.error = result.Errors[0].Message
		return m, nil
	}

	m.loading = true
	m.error = ""

	sessions := m.sessions
	return m, func() tea.Msg {
		_, err := sessions.Signup(context.Background(), email, password, name)
		return signupResultMsg{err: err}
	}
}

func (m SignupModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Red)).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Logbook — Create Account"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Name"))
	b.WriteString("\n")
	b.WriteString(m.name.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Creating account...")
		b.WriteString("\n")
	}
	if m.error != "" {
		b.WriteString(errorStyle.Render(m.error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: next / submit • Esc: back to login"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
