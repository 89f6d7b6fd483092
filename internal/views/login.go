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
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
)

type LoginModel struct {
	sessions *session.Store

	email    textinput.Model
	password textinput.Model
	field    loginField

	loading bool
	spinner *utils.Spinner
	error   string
}

type loginResultMsg struct {
	err error
}

func NewLoginModel(sessions *session.Store) *LoginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 100
	email.Focus()
	email.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	return &LoginModel{
		sessions: sessions,
		email:    email,
		password: password,
		spinner:  utils.NewSpinner(),
	}
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.field == loginFieldEmail {
				m.field = loginFieldPassword
				m.email.Blur()
				return m, m.password.Focus()
			}
			m.field = loginFieldEmail
			m.password.Blur()
			return m, m.email.Focus()

		case "enter":
			if m.field == loginFieldEmail {
				m.field = loginFieldPassword
				m.email.Blur()
				return m, m.password.Focus()
			}
			return m.submit()

		case "ctrl+n":
			return m, NavigateTo(ViewSignup, nil)
		}

	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			if apiErr, ok := api.AsError(msg.err); ok {
				m.error = apiErr.UserMessage()
			} else {
				m.error = msg.err.Error()
			}
			m.password.SetValue("")
			return m, nil
		}
		return m, func() tea.Msg { return LoggedInMsg{} }
	}

	var cmd tea.Cmd
	switch m.field {
	case loginFieldEmail:
		m.email, cmd = m.email.Update(msg)
	case loginFieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || password == "" {
		m.error = "Email and password are required"
		return m, nil
	}

	m.loading = true
	m.error = ""

	sessions := m.sessions
	return m, func() tea.Msg {
		_, err := sessions.Login(context.Background(), email, password)
		return loginResultMsg{err: err}
	}
}

func (m LoginModel) View() string {
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
	b.WriteString(titleStyle.Render("Logbook — Log In"))
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
		b.WriteString(m.spinner.View() + " Logging in...")
		b.WriteString("\n")
	}
	if m.error != "" {
		b.WriteString(errorStyle.Render(m.error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: log in • Tab: switch field • Ctrl+N: create account • Ctrl+C: quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
