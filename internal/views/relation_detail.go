package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/audit"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/utils"
	"logbook/termbook/internal/validation"
)

type DetailView int

const (
	DetailViewTimeline DetailView = iota
	DetailViewCompose
	DetailViewEditNote
	DetailViewDeleteConfirm
)

type RelationDetailModel struct {
	client   *api.Client
	activity *audit.Logger

	relation     *models.Relation
	interactions []models.Interaction
	selected     int

	currentView DetailView
	composer    textinput.Model
	attachInput textinput.Model
	onAttach    bool
	editID      string

	generation int

	summary string

	loading bool
	saving  bool
	spinner *utils.Spinner
	error   string
	status  string

	width  int
	height int
}

type interactionsLoadedMsg struct {
	generation   int
	interactions []models.Interaction
	err          error
}

type interactionSavedMsg struct {
	interaction *models.Interaction
	created     bool
	err         error
}

type interactionDeletedMsg struct {
	id  string
	err error
}

type summaryReadyMsg struct {
	generation int
	summary    string
	err        error
}

func NewRelationDetailModel(client *api.Client, activity *audit.Logger, relation *models.Relation) *RelationDetailModel {
	composer := textinput.New()
	composer.Placeholder = "what happened?"
	composer.CharLimit = 2000

	attach := textinput.New()
	attach.Placeholder = "attachment paths, comma separated (optional)"
	attach.CharLimit = 500

	return &RelationDetailModel{
		client:      client,
		activity:    activity,
		relation:    relation,
		composer:    composer,
		attachInput: attach,
		spinner:     utils.NewSpinner(),
	}
}

func (m *RelationDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *RelationDetailModel) Reload() tea.Cmd {
	m.generation++
	m.loading = true
	m.error = ""

	gen := m.generation
	client := m.client
	relationID := m.relation.ID
	return func() tea.Msg {
		interactions, err := client.ListInteractions(context.Background(), relationID)
		return interactionsLoadedMsg{generation: gen, interactions: interactions, err: err}
	}
}

func (m RelationDetailModel) Update(msg tea.Msg) (RelationDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case interactionsLoadedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.interactions = msg.interactions
		sort.Slice(m.interactions, func(i, j int) bool {
			if m.interactions[i].IsPinned != m.interactions[j].IsPinned {
				return m.interactions[i].IsPinned
			}
			return m.interactions[i].Date.After(m.interactions[j].Date)
		})
		if m.selected >= len(m.interactions) {
			m.selected = 0
		}
		return m, nil

	case interactionSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.currentView = DetailViewTimeline
		m.composer.SetValue("")
		m.attachInput.SetValue("")
		if msg.created {
			m.status = "Interaction logged"
			m.activity.Record(audit.ActionInteractionCreate, "", m.relation.ID, "")
		} else {
			m.status = "Interaction updated"
			m.activity.Record(audit.ActionInteractionUpdate, "", msg.interaction.ID, "")
		}
		return m, m.Reload()

	case interactionDeletedMsg:
		m.saving = false
		m.currentView = DetailViewTimeline
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.status = "Interaction deleted"
		m.activity.Record(audit.ActionInteractionDelete, "", msg.id, "")
		return m, m.Reload()

	case summaryReadyMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.summary = msg.summary
		return m, nil

	case tea.KeyMsg:
		switch m.currentView {
		case DetailViewTimeline:
			return m.updateTimeline(msg)
		case DetailViewCompose, DetailViewEditNote:
			return m.updateCompose(msg)
		case DetailViewDeleteConfirm:
			return m.updateDeleteConfirm(msg)
		}
	}

	return m, nil
}

func (m RelationDetailModel) updateTimeline(msg tea.KeyMsg) (RelationDetailModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.interactions)-1 {
			m.selected++
		}
	case "n":
		m.currentView = DetailViewCompose
		m.editID = ""
		m.onAttach = false
		m.error = ""
		m.status = ""
		m.composer.SetValue("")
		m.attachInput.SetValue("")
		return m, m.composer.Focus()
	case "e":
		if m.selected < len(m.interactions) {
			note := m.interactions[m.selected]
			m.currentView = DetailViewEditNote
			m.editID = note.ID
			m.onAttach = false
			m.error = ""
			m.status = ""
			m.composer.SetValue(note.Content)
			return m, m.composer.Focus()
		}
	case "d":
		if m.selected < len(m.interactions) {
			m.currentView = DetailViewDeleteConfirm
		}
	case "s":
		return m.summarize()
	case "r":
		return m, m.Reload()
	}
	return m, nil
}

// summarize sends the visible timeline through the AI summary
// endpoint.
func (m RelationDetailModel) summarize() (RelationDetailModel, tea.Cmd) {
	if len(m.interactions) == 0 {
		m.status = "Nothing to summarize"
		return m, nil
	}

	m.loading = true
	m.error = ""
	m.summary = ""

	var text strings.Builder
	for _, note := range m.interactions {
		text.WriteString(utils.FormatDate(note.Date))
		text.WriteString(": ")
		text.WriteString(note.Content)
		text.WriteString("\n")
	}

	gen := m.generation
	client := m.client
	payload := text.String()
	return m, func() tea.Msg {
		summary, err := client.SummarizeText(context.Background(), payload)
		return summaryReadyMsg{generation: gen, summary: summary, err: err}
	}
}

func (m RelationDetailModel) updateCompose(msg tea.KeyMsg) (RelationDetailModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = DetailViewTimeline
		m.error = ""
		return m, nil

	case "tab":
		// Attachments only apply to new interactions.
		if m.currentView == DetailViewCompose {
			m.onAttach = !m.onAttach
			if m.onAttach {
				m.composer.Blur()
				return m, m.attachInput.Focus()
			}
			m.attachInput.Blur()
			return m, m.composer.Focus()
		}
		return m, nil

	case "enter":
		return m.submitNote()
	}

	var cmd tea.Cmd
	if m.onAttach {
		m.attachInput, cmd = m.attachInput.Update(msg)
	} else {
		m.composer, cmd = m.composer.Update(msg)
	}
	return m, cmd
}

func (m RelationDetailModel) submitNote() (RelationDetailModel, tea.Cmd) {
	content := strings.TrimSpace(m.composer.Value())

	if m.currentView == DetailViewEditNote {
		if content == "" {
			m.error = "Interaction content is required"
			return m, nil
		}
		m.saving = true
		m.error = ""

		client := m.client
		editID := m.editID
		return m, func() tea.Msg {
			note, err := client.UpdateInteraction(context.Background(), editID, content)
			return interactionSavedMsg{interaction: note, err: err}
		}
	}

	attachments, err := openAttachments(m.attachInput.Value())
	if err != nil {
		m.error = err.Error()
		return m, nil
	}

	draft := models.InteractionDraft{Content: content, Attachments: attachments}
	if result := validation.ValidateInteraction(draft); !result.IsValid {
		closeAttachments(attachments)
		m.error = result.Errors[0].Message
		return m, nil
	}

	m.saving = true
	m.error = ""

	client := m.client
	relationID := m.relation.ID
	return m, func() tea.Msg {
		defer closeAttachments(attachments)
		note, err := client.CreateInteraction(context.Background(), relationID, draft)
		return interactionSavedMsg{interaction: note, created: true, err: err}
	}
}

func (m RelationDetailModel) updateDeleteConfirm(msg tea.KeyMsg) (RelationDetailModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.selected >= len(m.interactions) {
			m.currentView = DetailViewTimeline
			return m, nil
		}
		note := m.interactions[m.selected]
		m.saving = true

		client := m.client
		return m, func() tea.Msg {
			err := client.DeleteInteraction(context.Background(), note.ID)
			return interactionDeletedMsg{id: note.ID, err: err}
		}

	case "n", "esc":
		m.currentView = DetailViewTimeline
	}
	return m, nil
}

func openAttachments(raw string) ([]models.Attachment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var attachments []models.Attachment
	for _, part := range strings.Split(raw, ",") {
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			closeAttachments(attachments)
			return nil, fmt.Errorf("cannot open attachment %s: %w", path, err)
		}
		attachments = append(attachments, models.Attachment{
			Filename: filepath.Base(path),
			Reader:   f,
		})
	}
	return attachments, nil
}

func closeAttachments(attachments []models.Attachment) {
	for _, a := range attachments {
		if closer, ok := a.Reader.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
}

func (m RelationDetailModel) View() string {
	switch m.currentView {
	case DetailViewCompose:
		return m.viewCompose("Log Interaction")
	case DetailViewEditNote:
		return m.viewCompose("Edit Interaction")
	case DetailViewDeleteConfirm:
		return m.viewDeleteConfirm()
	default:
		return m.viewTimeline()
	}
}

func (m RelationDetailModel) viewTimeline() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Blue))

	pinStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Yellow))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.relation.Name))
	b.WriteString(dimStyle.Render("  " + string(m.relation.CategoryType)))
	b.WriteString("\n")

	var meta []string
	if m.relation.Location != "" {
		meta = append(meta, m.relation.Location)
	}
	if m.relation.EmailAddress != "" {
		meta = append(meta, m.relation.EmailAddress)
	}
	if m.relation.PhoneNumber != "" {
		meta = append(meta, m.relation.PhoneNumber)
	}
	if len(meta) > 0 {
		b.WriteString(dimStyle.Render(strings.Join(meta, "  ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading...")
		b.WriteString("\n")
	} else if len(m.interactions) == 0 {
		b.WriteString(dimStyle.Render("No interactions yet. Press 'n' to log one."))
		b.WriteString("\n")
	} else {
		for i, note := range m.interactions {
			marker := "  "
			if note.IsPinned {
				marker = pinStyle.Render("* ")
			}
			line := fmt.Sprintf("%s%s  %s", marker, utils.FormatDate(note.Date), utils.Truncate(utils.FirstLine(note.Content), 60))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	if m.summary != "" {
		summaryStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Mauve)).
			Padding(1, 0)
		b.WriteString(summaryStyle.Render("Summary: " + m.summary))
		b.WriteString("\n")
	}

	if m.error != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Green)).Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Italic(true).Render("n: new • e: edit • d: delete • s: summarize • r: refresh • Esc: back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m RelationDetailModel) viewCompose(title string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s — %s", title, m.relation.Name)))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Note"))
	b.WriteString("\n")
	b.WriteString(m.composer.View())
	b.WriteString("\n\n")

	if m.currentView == DetailViewCompose {
		b.WriteString(labelStyle.Render("Attachments"))
		b.WriteString("\n")
		b.WriteString(m.attachInput.View())
		b.WriteString("\n\n")
	}

	if m.saving {
		b.WriteString(m.spinner.View() + " Saving...")
		b.WriteString("\n")
	}
	if m.error != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: save • Tab: switch field • Esc: cancel"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m RelationDetailModel) viewDeleteConfirm() string {
	if m.selected >= len(m.interactions) {
		return ""
	}
	note := m.interactions[m.selected]

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Red)).
		Bold(true)

	var b strings.Builder
	b.WriteString(warnStyle.Render("Delete Interaction"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete the note from %s?\n", utils.FormatDate(note.Date)))
	b.WriteString(utils.Truncate(utils.FirstLine(note.Content), 60))
	b.WriteString("\n\n")
	if m.saving {
		b.WriteString(m.spinner.View() + " Deleting...")
	} else {
		b.WriteString("y: delete • n: cancel")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
