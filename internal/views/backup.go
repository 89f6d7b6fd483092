package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/audit"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/session"
	"logbook/termbook/internal/storage"
	"logbook/termbook/internal/utils"
)

type BackupView int

const (
	BackupViewMenu BackupView = iota
	BackupViewExport
	BackupViewImport
)

type BackupModel struct {
	client   *api.Client
	storage  *storage.Storage
	sessions *session.Store
	activity *audit.Logger

	currentView BackupView
	pathInput   textinput.Model
	passInput   textinput.Model
	onPassword  bool

	working bool
	spinner *utils.Spinner
	error   string
	status  string
}

type backupExportedMsg struct {
	path  string
	count int
	err   error
}

type backupImportedMsg struct {
	relations    int
	interactions int
	err          error
}

func NewBackupModel(client *api.Client, st *storage.Storage, sessions *session.Store, activity *audit.Logger) *BackupModel {
	path := textinput.New()
	path.Placeholder = "backup file path"
	path.CharLimit = 300

	pass := textinput.New()
	pass.Placeholder = "backup password"
	pass.CharLimit = 100
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	return &BackupModel{
		client:    client,
		storage:   st,
		sessions:  sessions,
		activity:  activity,
		pathInput: path,
		passInput: pass,
		spinner:   utils.NewSpinner(),
	}
}

// Reset returns the view to the menu without dropping typed paths.
func (m *BackupModel) Reset() {
	m.currentView = BackupViewMenu
	m.working = false
	m.error = ""
	m.status = ""
}

func (m BackupModel) Update(msg tea.Msg) (BackupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case backupExportedMsg:
		m.working = false
		m.currentView = BackupViewMenu
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Exported %s to %s", utils.Pluralize(msg.count, "relation", "relations"), msg.path)
		m.recordActivity(audit.ActionExport, msg.path)
		return m, nil

	case backupImportedMsg:
		m.working = false
		m.currentView = BackupViewMenu
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Imported %s and %s",
			utils.Pluralize(msg.relations, "relation", "relations"),
			utils.Pluralize(msg.interactions, "interaction", "interactions"))
		m.recordActivity(audit.ActionImport, "")
		return m, nil

	case tea.KeyMsg:
		if m.working {
			return m, nil
		}

		switch m.currentView {
		case BackupViewMenu:
			switch msg.String() {
			case "e":
				m.currentView = BackupViewExport
				m.onPassword = false
				m.error = ""
				m.status = ""
				m.pathInput.SetValue(m.storage.DefaultBackupPath())
				m.passInput.SetValue("")
				return m, m.pathInput.Focus()
			case "i":
				m.currentView = BackupViewImport
				m.onPassword = false
				m.error = ""
				m.status = ""
				m.pathInput.SetValue("")
				m.passInput.SetValue("")
				return m, m.pathInput.Focus()
			}
			return m, nil

		case BackupViewExport, BackupViewImport:
			switch msg.String() {
			case "esc":
				m.currentView = BackupViewMenu
				m.error = ""
				return m, nil

			case "tab":
				m.onPassword = !m.onPassword
				if m.onPassword {
					m.pathInput.Blur()
					return m, m.passInput.Focus()
				}
				m.passInput.Blur()
				return m, m.pathInput.Focus()

			case "enter":
				if !m.onPassword {
					m.onPassword = true
					m.pathInput.Blur()
					return m, m.passInput.Focus()
				}
				if m.currentView == BackupViewExport {
					return m.runExport()
				}
				return m.runImport()
			}

			var cmd tea.Cmd
			if m.onPassword {
				m.passInput, cmd = m.passInput.Update(msg)
			} else {
				m.pathInput, cmd = m.pathInput.Update(msg)
			}
			return m, cmd
		}
	}

	return m, nil
}

func (m *BackupModel) recordActivity(action audit.Action, detail string) {
	current := m.sessions.Current()
	userID := ""
	if current.User != nil {
		userID = current.User.ID
	}
	m.activity.Record(action, userID, "", detail)
}

func (m BackupModel) runExport() (BackupModel, tea.Cmd) {
	path := strings.TrimSpace(m.pathInput.Value())
	password := m.passInput.Value()

	if path == "" {
		m.error = "Backup path is required"
		return m, nil
	}
	if len(password) < 8 {
		m.error = "Backup password must be at least 8 characters"
		return m, nil
	}

	m.working = true
	m.error = ""

	client := m.client
	st := m.storage
	current := m.sessions.Current()
	userID := ""
	if current.User != nil {
		userID = current.User.ID
	}
	return m, func() tea.Msg {
		ctx := context.Background()

		relations, err := client.ListRelations(ctx)
		if err != nil {
			return backupExportedMsg{err: err}
		}

		var interactions []models.Interaction
		for _, relation := range relations {
			notes, err := client.ListInteractions(ctx, relation.ID)
			if err != nil {
				return backupExportedMsg{err: err}
			}
			interactions = append(interactions, notes...)
		}

		if _, err := st.WriteBackup(path, password, userID, relations, interactions); err != nil {
			return backupExportedMsg{err: err}
		}
		return backupExportedMsg{path: path, count: len(relations)}
	}
}

// runImport replays a backup against the server. Relations are keyed
// by name on import so re-running the same backup does not duplicate
// them.
func (m BackupModel) runImport() (BackupModel, tea.Cmd) {
	path := strings.TrimSpace(m.pathInput.Value())
	password := m.passInput.Value()

	if path == "" {
		m.error = "Backup path is required"
		return m, nil
	}
	if password == "" {
		m.error = "Backup password is required"
		return m, nil
	}

	m.working = true
	m.error = ""

	client := m.client
	st := m.storage
	return m, func() tea.Msg {
		ctx := context.Background()

		backup, err := st.ReadBackup(path, password)
		if err != nil {
			return backupImportedMsg{err: err}
		}

		existing, err := client.ListRelations(ctx)
		if err != nil {
			return backupImportedMsg{err: err}
		}
		byName := make(map[string]string, len(existing))
		for _, r := range existing {
			byName[strings.ToLower(r.Name)] = r.ID
		}

		// Map backed-up relation ids onto the ids the server assigns.
		idMap := make(map[string]string, len(backup.Relations))
		created := 0
		for _, r := range backup.Relations {
			if id, ok := byName[strings.ToLower(r.Name)]; ok {
				idMap[r.ID] = id
				continue
			}
			madeRelation, err := client.CreateRelation(ctx, models.RelationFields{
				Name:         r.Name,
				CategoryType: r.CategoryType,
				Location:     r.Location,
				EmailAddress: r.EmailAddress,
				PhoneNumber:  r.PhoneNumber,
			})
			if err != nil {
				return backupImportedMsg{err: err}
			}
			idMap[r.ID] = madeRelation.ID
			created++
		}

		imported := 0
		for _, note := range backup.Interactions {
			targetID, ok := idMap[note.RelationID]
			if !ok {
				continue
			}
			draft := models.InteractionDraft{Content: note.Content}
			if _, err := client.CreateInteraction(ctx, targetID, draft); err != nil {
				return backupImportedMsg{err: err}
			}
			imported++
		}

		return backupImportedMsg{relations: created, interactions: imported}
	}
}

func (m BackupModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Encrypted Backup"))
	b.WriteString("\n\n")

	switch m.currentView {
	case BackupViewExport, BackupViewImport:
		verb := "Export"
		if m.currentView == BackupViewImport {
			verb = "Import"
		}
		b.WriteString(dimStyle.Render(verb + " path"))
		b.WriteString("\n" + m.pathInput.View() + "\n\n")
		b.WriteString(dimStyle.Render("Password"))
		b.WriteString("\n" + m.passInput.View() + "\n\n")
		if m.working {
			b.WriteString(m.spinner.View() + " Working...\n")
		}
		if m.error != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Italic(true).Render("Enter: continue • Tab: switch field • Esc: cancel"))

	default:
		b.WriteString("Backups are AES encrypted with a password you choose.\n")
		b.WriteString("Export downloads every relation and interaction; import replays\n")
		b.WriteString("a backup against the server without duplicating relations.\n\n")
		if m.error != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
			b.WriteString("\n")
		}
		if m.status != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Green)).Render(m.status))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Italic(true).Render("e: export • i: import • Esc: back"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
