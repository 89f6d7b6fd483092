package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/audit"
	"logbook/termbook/internal/config"
	"logbook/termbook/internal/googleauth"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/session"
	"logbook/termbook/internal/storage"
	"logbook/termbook/internal/utils"
)

type ViewState int

const (
	ViewLogin ViewState = iota
	ViewSignup
	ViewRelations
	ViewRelationDetail
	ViewSearch
	ViewDailySummary
	ViewCalendar
	ViewBackup
)

// Protected reports whether a view may only render with an
// authenticated session.
func (s ViewState) Protected() bool {
	return s != ViewLogin && s != ViewSignup
}

type AppModel struct {
	state  ViewState
	width  int
	height int

	config   *config.Config
	storage  *storage.Storage
	sessions *session.Store
	client   *api.Client
	guard    Guard
	activity *audit.Logger

	login          *LoginModel
	signup         *SignupModel
	relations      *RelationsModel
	relationDetail *RelationDetailModel
	search         *SearchModel
	dailySummary   *DailySummaryModel
	calendar       *CalendarModel
	backup         *BackupModel

	err error
}

type NavigateMsg struct {
	State ViewState
	Data  interface{}
}

type ErrorMsg struct {
	Err error
}

// LoggedInMsg fires after a successful login or signup.
type LoggedInMsg struct{}

// LoggedOutMsg fires after logout so every view resets.
type LoggedOutMsg struct{}

func NewAppModel() (*AppModel, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var st *storage.Storage
	if cfg.DataDir != "" {
		st, err = storage.NewStorageAt(cfg.DataDir)
	} else {
		st, err = storage.NewStorage()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := api.NewClient(api.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.Timeout}, st)

	sessions := session.NewStore(st, client)
	if err := sessions.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	activity, err := audit.NewLogger(st.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize activity log: %w", err)
	}

	guard := NewGuard(sessions)

	app := &AppModel{
		state:    guard.Resolve(ViewRelations),
		config:   cfg,
		storage:  st,
		sessions: sessions,
		client:   client,
		guard:    guard,
		activity: activity,
	}

	app.login = NewLoginModel(sessions)
	app.signup = NewSignupModel(sessions)
	app.relations = NewRelationsModel(client, activity)

	return app, nil
}

func (m AppModel) Init() tea.Cmd {
	if m.state == ViewRelations {
		return m.relations.Reload()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+f":
			if m.guard.Allow() && m.state != ViewSearch {
				return m.navigateTo(ViewSearch, nil)
			}
		case "ctrl+g":
			if m.guard.Allow() && m.state != ViewDailySummary {
				return m.navigateTo(ViewDailySummary, nil)
			}
		case "ctrl+k":
			if m.guard.Allow() && m.state != ViewCalendar {
				return m.navigateTo(ViewCalendar, nil)
			}
		case "ctrl+b":
			if m.guard.Allow() && m.state != ViewBackup {
				return m.navigateTo(ViewBackup, nil)
			}
		case "ctrl+l":
			if m.guard.Allow() {
				return m.logout()
			}
		case "esc":
			if m.state != ViewRelations && m.state != ViewLogin && m.state != ViewSignup {
				return m.navigateTo(ViewRelations, nil)
			}
		}

	case NavigateMsg:
		return m.navigateTo(msg.State, msg.Data)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case LoggedInMsg:
		current := m.sessions.Current()
		if current.User != nil {
			m.activity.Record(audit.ActionLogin, current.User.ID, "", "")
		}
		return m.navigateTo(ViewRelations, nil)

	case LoggedOutMsg:
		return m.navigateTo(ViewLogin, nil)
	}

	switch m.state {
	case ViewLogin:
		if m.login != nil {
			*m.login, cmd = m.login.Update(msg)
		}
	case ViewSignup:
		if m.signup != nil {
			*m.signup, cmd = m.signup.Update(msg)
		}
	case ViewRelations:
		if m.relations != nil {
			*m.relations, cmd = m.relations.Update(msg)
		}
	case ViewRelationDetail:
		if m.relationDetail != nil {
			*m.relationDetail, cmd = m.relationDetail.Update(msg)
		}
	case ViewSearch:
		if m.search != nil {
			*m.search, cmd = m.search.Update(msg)
		}
	case ViewDailySummary:
		if m.dailySummary != nil {
			*m.dailySummary, cmd = m.dailySummary.Update(msg)
		}
	case ViewCalendar:
		if m.calendar != nil {
			*m.calendar, cmd = m.calendar.Update(msg)
		}
	case ViewBackup:
		if m.backup != nil {
			*m.backup, cmd = m.backup.Update(msg)
		}
	}

	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string

	switch m.state {
	case ViewLogin:
		content = m.login.View()
	case ViewSignup:
		content = m.signup.View()
	default:
		// Every other view is protected. The child render function is
		// only invoked when the guard allows it; a logged-out session
		// shows the login screen with no protected content in the
		// frame.
		rendered, ok := m.guard.Render(func() string { return m.protectedView() })
		if !ok {
			content = m.login.View()
			break
		}
		content = rendered
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true).
			Padding(1)
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m AppModel) protectedView() string {
	switch m.state {
	case ViewRelations:
		if m.relations != nil {
			return m.relations.View()
		}
	case ViewRelationDetail:
		if m.relationDetail != nil {
			return m.relationDetail.View()
		}
	case ViewSearch:
		if m.search != nil {
			return m.search.View()
		}
	case ViewDailySummary:
		if m.dailySummary != nil {
			return m.dailySummary.View()
		}
	case ViewCalendar:
		if m.calendar != nil {
			return m.calendar.View()
		}
	case ViewBackup:
		if m.backup != nil {
			return m.backup.View()
		}
	}
	return "Unknown view"
}

func (m AppModel) navigateTo(state ViewState, data interface{}) (tea.Model, tea.Cmd) {
	// The guard is consulted on every navigation; a protected target
	// without a session becomes the login view and the protected
	// child is never constructed.
	m.state = m.guard.Resolve(state)
	m.err = nil

	switch m.state {
	case ViewLogin:
		m.login = NewLoginModel(m.sessions)
	case ViewSignup:
		m.signup = NewSignupModel(m.sessions)
	case ViewRelations:
		if m.relations == nil {
			m.relations = NewRelationsModel(m.client, m.activity)
		}
		m.relations.SetSize(m.width, m.height)
		return m, m.relations.Reload()
	case ViewRelationDetail:
		relation, ok := data.(*models.Relation)
		if !ok || relation == nil {
			m.state = ViewRelations
			return m, m.relations.Reload()
		}
		m.relationDetail = NewRelationDetailModel(m.client, m.activity, relation)
		m.relationDetail.SetSize(m.width, m.height)
		return m, m.relationDetail.Reload()
	case ViewSearch:
		if m.search == nil {
			m.search = NewSearchModel(m.client, m.config.SearchMatchCount)
		}
		m.search.SetSize(m.width, m.height)
	case ViewDailySummary:
		m.dailySummary = NewDailySummaryModel(m.client)
		return m, m.dailySummary.Generate()
	case ViewCalendar:
		if m.calendar == nil {
			flow := googleauth.NewFlow(
				m.client,
				m.config.GoogleClientID,
				m.config.GoogleClientSecret,
				m.config.OAuthCallbackPort,
			)
			m.calendar = NewCalendarModel(m.client, m.sessions, flow, m.activity)
		}
		return m, m.calendar.Refresh()
	case ViewBackup:
		if m.backup == nil {
			m.backup = NewBackupModel(m.client, m.storage, m.sessions, m.activity)
		}
		m.backup.Reset()
	}

	return m, nil
}

func (m AppModel) logout() (tea.Model, tea.Cmd) {
	current := m.sessions.Current()
	userID := ""
	if current.User != nil {
		userID = current.User.ID
	}

	m.sessions.Logout()
	m.activity.Record(audit.ActionLogout, userID, "", "")

	// Drop protected view state so nothing survives into the next
	// session.
	m.relations = nil
	m.relationDetail = nil
	m.search = nil
	m.dailySummary = nil
	m.calendar = nil
	m.backup = nil

	return m.navigateTo(ViewLogin, nil)
}

func NavigateTo(state ViewState, data interface{}) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{State: state, Data: data}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
