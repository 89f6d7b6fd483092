package views

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/audit"
	"logbook/termbook/internal/googleauth"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/session"
	"logbook/termbook/internal/utils"
)

type CalendarView int

const (
	CalendarViewEvents CalendarView = iota
	CalendarViewConnecting
	CalendarViewCreate
)

type calendarFormField int

const (
	calFieldSummary calendarFormField = iota
	calFieldStart
	calFieldEnd
	calFieldLocation
	calFieldCount
)

type CalendarModel struct {
	client   *api.Client
	sessions *session.Store
	flow     *googleauth.Flow
	activity *audit.Logger

	events   []models.CalendarEvent
	selected int

	currentView CalendarView
	authURL     string
	cancelAuth  context.CancelFunc

	summaryInput  textinput.Model
	startInput    textinput.Model
	endInput      textinput.Model
	locationInput textinput.Model
	formField     calendarFormField

	generation int

	loading bool
	saving  bool
	spinner *utils.Spinner
	error   string
	status  string
}

type calendarEventsMsg struct {
	generation int
	events     []models.CalendarEvent
	err        error
}

type calendarAuthStartedMsg struct {
	authURL string
	results <-chan googleauth.Result
	cancel  context.CancelFunc
	err     error
}

type calendarAuthDoneMsg struct {
	credentials string
	err         error
}

type calendarEventSavedMsg struct {
	err error
}

func NewCalendarModel(client *api.Client, sessions *session.Store, flow *googleauth.Flow, activity *audit.Logger) *CalendarModel {
	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 200
		return in
	}

	return &CalendarModel{
		client:        client,
		sessions:      sessions,
		flow:          flow,
		activity:      activity,
		summaryInput:  newInput("event title"),
		startInput:    newInput("start, e.g. 2026-08-28 14:00"),
		endInput:      newInput("end, e.g. 2026-08-28 15:00"),
		locationInput: newInput("location"),
		spinner:       utils.NewSpinner(),
	}
}

// Refresh loads events when the calendar is connected; otherwise it is
// a no-op and the view offers the connect flow.
func (m *CalendarModel) Refresh() tea.Cmd {
	if !m.sessions.CalendarConnected() {
		return nil
	}

	m.generation++
	m.loading = true
	m.error = ""

	gen := m.generation
	client := m.client
	return func() tea.Msg {
		events, err := client.ListCalendarEvents(context.Background())
		return calendarEventsMsg{generation: gen, events: events, err: err}
	}
}

func (m CalendarModel) Update(msg tea.Msg) (CalendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarEventsMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			if api.IsAuth(msg.err) {
				// Credentials the server rejects are stale; drop them so
				// the connect flow can run again.
				m.sessions.ClearGoogleCredentials()
			}
			return m, nil
		}
		m.events = msg.events
		m.selected = 0
		return m, nil

	case calendarAuthStartedMsg:
		if msg.err != nil {
			m.currentView = CalendarViewEvents
			m.error = errorText(msg.err)
			return m, nil
		}
		m.authURL = msg.authURL
		m.cancelAuth = msg.cancel
		results := msg.results
		return m, func() tea.Msg {
			result := <-results
			return calendarAuthDoneMsg{credentials: result.Credentials, err: result.Err}
		}

	case calendarAuthDoneMsg:
		m.currentView = CalendarViewEvents
		m.cancelAuth = nil
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		if err := m.sessions.SetGoogleCredentials(msg.credentials); err != nil {
			m.error = err.Error()
			return m, nil
		}
		m.status = "Google Calendar connected"
		current := m.sessions.Current()
		userID := ""
		if current.User != nil {
			userID = current.User.ID
		}
		m.activity.Record(audit.ActionCalendarConnect, userID, "", "")
		return m, m.Refresh()

	case calendarEventSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.currentView = CalendarViewEvents
		m.status = "Event created"
		return m, m.Refresh()

	case tea.KeyMsg:
		switch m.currentView {
		case CalendarViewEvents:
			return m.updateEvents(msg)
		case CalendarViewConnecting:
			if msg.String() == "esc" {
				if m.cancelAuth != nil {
					m.cancelAuth()
				}
				m.currentView = CalendarViewEvents
			}
			return m, nil
		case CalendarViewCreate:
			return m.updateCreate(msg)
		}
	}

	return m, nil
}

func (m CalendarModel) updateEvents(msg tea.KeyMsg) (CalendarModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.events)-1 {
			m.selected++
		}
	case "g":
		if !m.sessions.CalendarConnected() {
			return m.startConnect()
		}
	case "x":
		if m.sessions.CalendarConnected() {
			if err := m.sessions.ClearGoogleCredentials(); err != nil {
				m.error = err.Error()
				return m, nil
			}
			m.events = nil
			m.status = "Google Calendar disconnected"
		}
	case "n":
		if m.sessions.CalendarConnected() {
			m.currentView = CalendarViewCreate
			m.formField = calFieldSummary
			m.error = ""
			m.status = ""
			return m, m.focusFormField()
		}
	case "r":
		return m, m.Refresh()
	}
	return m, nil
}

func (m CalendarModel) startConnect() (CalendarModel, tea.Cmd) {
	m.currentView = CalendarViewConnecting
	m.error = ""
	m.status = ""

	flow := m.flow
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		authURL, results, err := flow.Start(ctx)
		if err != nil {
			cancel()
			return calendarAuthStartedMsg{err: err}
		}
		return calendarAuthStartedMsg{authURL: authURL, results: results, cancel: cancel}
	}
}

func (m *CalendarModel) focusFormField() tea.Cmd {
	m.summaryInput.Blur()
	m.startInput.Blur()
	m.endInput.Blur()
	m.locationInput.Blur()
	switch m.formField {
	case calFieldSummary:
		return m.summaryInput.Focus()
	case calFieldStart:
		return m.startInput.Focus()
	case calFieldEnd:
		return m.endInput.Focus()
	default:
		return m.locationInput.Focus()
	}
}

func (m CalendarModel) updateCreate(msg tea.KeyMsg) (CalendarModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = CalendarViewEvents
		m.error = ""
		return m, nil

	case "tab", "down":
		m.formField = (m.formField + 1) % calFieldCount
		return m, m.focusFormField()

	case "shift+tab", "up":
		m.formField = (m.formField + calFieldCount - 1) % calFieldCount
		return m, m.focusFormField()

	case "enter":
		if m.formField != calFieldCount-1 {
			m.formField++
			return m, m.focusFormField()
		}
		return m.submitEvent()
	}

	var cmd tea.Cmd
	switch m.formField {
	case calFieldSummary:
		m.summaryInput, cmd = m.summaryInput.Update(msg)
	case calFieldStart:
		m.startInput, cmd = m.startInput.Update(msg)
	case calFieldEnd:
		m.endInput, cmd = m.endInput.Update(msg)
	case calFieldLocation:
		m.locationInput, cmd = m.locationInput.Update(msg)
	}
	return m, cmd
}

const eventTimeLayout = "2006-01-02 15:04"

func (m CalendarModel) submitEvent() (CalendarModel, tea.Cmd) {
	summary := strings.TrimSpace(m.summaryInput.Value())
	if summary == "" {
		m.error = "Event title is required"
		return m, nil
	}

	start, err := time.ParseInLocation(eventTimeLayout, strings.TrimSpace(m.startInput.Value()), time.Local)
	if err != nil {
		m.error = "Start time must look like 2026-08-28 14:00"
		return m, nil
	}
	end, err := time.ParseInLocation(eventTimeLayout, strings.TrimSpace(m.endInput.Value()), time.Local)
	if err != nil {
		m.error = "End time must look like 2026-08-28 15:00"
		return m, nil
	}
	if !end.After(start) {
		m.error = "End time must be after the start time"
		return m, nil
	}

	event := models.CalendarEvent{
		Summary:   summary,
		StartTime: start,
		EndTime:   end,
		Location:  strings.TrimSpace(m.locationInput.Value()),
	}

	m.saving = true
	m.error = ""

	client := m.client
	return m, func() tea.Msg {
		err := client.CreateCalendarEvent(context.Background(), event)
		return calendarEventSavedMsg{err: err}
	}
}

func (m CalendarModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Blue))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Calendar"))
	b.WriteString("\n\n")

	switch m.currentView {
	case CalendarViewConnecting:
		b.WriteString("Open this URL in your browser to authorize Google Calendar:\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Mauve)).Render(m.authURL))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " Waiting for authorization...")
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Italic(true).Render("Esc: cancel"))

	case CalendarViewCreate:
		labelStyle := dimStyle
		b.WriteString(labelStyle.Render("Title"))
		b.WriteString("\n" + m.summaryInput.View() + "\n\n")
		b.WriteString(labelStyle.Render("Start"))
		b.WriteString("\n" + m.startInput.View() + "\n\n")
		b.WriteString(labelStyle.Render("End"))
		b.WriteString("\n" + m.endInput.View() + "\n\n")
		b.WriteString(labelStyle.Render("Location"))
		b.WriteString("\n" + m.locationInput.View() + "\n\n")
		if m.saving {
			b.WriteString(m.spinner.View() + " Creating event...\n")
		}
		if m.error != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Italic(true).Render("Enter: next / create • Esc: cancel"))

	default:
		if !m.sessions.CalendarConnected() {
			b.WriteString(dimStyle.Render("Google Calendar is not connected."))
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Italic(true).Render("g: connect • Esc: back"))
		} else {
			if m.loading {
				b.WriteString(m.spinner.View() + " Loading events...")
				b.WriteString("\n")
			} else if len(m.events) == 0 {
				b.WriteString(dimStyle.Render("No upcoming events."))
				b.WriteString("\n")
			} else {
				for i, event := range m.events {
					line := utils.FormatDateTime(event.StartTime) + "  " + utils.Truncate(event.Summary, 40)
					if event.Location != "" {
						line += "  @ " + event.Location
					}
					if i == m.selected {
						b.WriteString(selectedStyle.Render("> " + line))
					} else {
						b.WriteString("  " + line)
					}
					b.WriteString("\n")
				}
			}
			b.WriteString("\n")
			b.WriteString(dimStyle.Italic(true).Render("n: new event • x: disconnect • r: refresh • Esc: back"))
		}

		if m.error != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
		}
		if m.status != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Green)).Render(m.status))
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
