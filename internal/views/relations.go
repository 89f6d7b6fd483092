package views

import (
	"context"
	"fmt"
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

type RelationsView int

const (
	RelationsViewList RelationsView = iota
	RelationsViewCreate
	RelationsViewEdit
	RelationsViewDeleteConfirm
)

type RelationsModel struct {
	client   *api.Client
	activity *audit.Logger

	relations []models.Relation
	filtered  []models.Relation
	selected  int

	currentView RelationsView
	filterInput textinput.Model
	filtering   bool
	categoryIdx int

	form RelationForm

	// generation tags every fetch; completions carrying an older
	// generation are dropped so a stale response can never overwrite a
	// newer list.
	generation int

	loading bool
	spinner *utils.Spinner
	error   string
	status  string

	width  int
	height int
}

type relationsLoadedMsg struct {
	generation int
	relations  []models.Relation
	err        error
}

type relationSavedMsg struct {
	relation *models.Relation
	created  bool
	err      error
}

type relationDeletedMsg struct {
	id   string
	name string
	err  error
}

func NewRelationsModel(client *api.Client, activity *audit.Logger) *RelationsModel {
	filter := textinput.New()
	filter.Placeholder = "filter by name..."
	filter.CharLimit = 100

	return &RelationsModel{
		client:      client,
		activity:    activity,
		filterInput: filter,
		spinner:     utils.NewSpinner(),
		categoryIdx: -1,
	}
}

func (m *RelationsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reload fetches the relation list. Any in-flight fetch is implicitly
// abandoned: its completion carries a stale generation.
func (m *RelationsModel) Reload() tea.Cmd {
	m.generation++
	m.loading = true
	m.error = ""

	gen := m.generation
	client := m.client
	return func() tea.Msg {
		relations, err := client.ListRelations(context.Background())
		return relationsLoadedMsg{generation: gen, relations: relations, err: err}
	}
}

func (m RelationsModel) Update(msg tea.Msg) (RelationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case relationsLoadedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.relations = msg.relations
		m.applyFilter()
		return m, nil

	case relationSavedMsg:
		m.loading = false
		if msg.err != nil {
			m.form.submitting = false
			m.error = errorText(msg.err)
			return m, nil
		}
		m.currentView = RelationsViewList
		if msg.created {
			m.status = fmt.Sprintf("Added %s", msg.relation.Name)
			m.activity.Record(audit.ActionRelationCreate, msg.relation.UserID, msg.relation.ID, msg.relation.Name)
		} else {
			m.status = fmt.Sprintf("Updated %s", msg.relation.Name)
			m.activity.Record(audit.ActionRelationUpdate, msg.relation.UserID, msg.relation.ID, msg.relation.Name)
		}
		return m, m.Reload()

	case relationDeletedMsg:
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			m.currentView = RelationsViewList
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s", msg.name)
		m.activity.Record(audit.ActionRelationDelete, "", msg.id, msg.name)
		m.currentView = RelationsViewList
		return m, m.Reload()

	case tea.KeyMsg:
		switch m.currentView {
		case RelationsViewList:
			return m.updateList(msg)
		case RelationsViewCreate, RelationsViewEdit:
			return m.updateForm(msg)
		case RelationsViewDeleteConfirm:
			return m.updateDeleteConfirm(msg)
		}
	}

	return m, nil
}

func (m RelationsModel) updateList(msg tea.KeyMsg) (RelationsModel, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.filtered)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(m.filtered) {
			relation := m.filtered[m.selected]
			return m, NavigateTo(ViewRelationDetail, &relation)
		}
	case "n":
		m.currentView = RelationsViewCreate
		m.form = NewRelationForm(nil)
		m.error = ""
		m.status = ""
		return m, m.form.Focus()
	case "e":
		if m.selected < len(m.filtered) {
			relation := m.filtered[m.selected]
			m.currentView = RelationsViewEdit
			m.form = NewRelationForm(&relation)
			m.error = ""
			m.status = ""
			return m, m.form.Focus()
		}
	case "d":
		if m.selected < len(m.filtered) {
			m.currentView = RelationsViewDeleteConfirm
		}
	case "/":
		m.filtering = true
		return m, m.filterInput.Focus()
	case "c":
		m.categoryIdx++
		if m.categoryIdx >= len(models.Categories) {
			m.categoryIdx = -1
		}
		m.applyFilter()
	case "r":
		return m, m.Reload()
	}

	return m, nil
}

func (m RelationsModel) updateForm(msg tea.KeyMsg) (RelationsModel, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = RelationsViewList
		m.error = ""
		return m, nil

	case "ctrl+s":
		return m.submitForm()

	case "enter":
		if m.form.OnLastField() {
			return m.submitForm()
		}
		m.form.Next()
		return m, m.form.Focus()

	case "tab", "down":
		m.form.Next()
		return m, m.form.Focus()

	case "shift+tab", "up":
		m.form.Prev()
		return m, m.form.Focus()

	case "left", "right":
		if m.form.OnCategoryField() {
			m.form.CycleCategory(msg.String() == "right")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m RelationsModel) submitForm() (RelationsModel, tea.Cmd) {
	fields := m.form.Fields()

	existing := make([]string, 0, len(m.relations))
	for _, r := range m.relations {
		if m.currentView == RelationsViewEdit && r.ID == m.form.editID {
			continue
		}
		existing = append(existing, r.Name)
	}

	result := validation.ValidateRelation(fields, existing)
	if !result.IsValid {
		m.error = result.Errors[0].Message
		return m, nil
	}

	m.form.submitting = true
	m.loading = true
	m.error = ""

	client := m.client
	editID := m.form.editID
	creating := m.currentView == RelationsViewCreate
	return m, func() tea.Msg {
		if creating {
			relation, err := client.CreateRelation(context.Background(), fields)
			return relationSavedMsg{relation: relation, created: true, err: err}
		}
		relation, err := client.UpdateRelation(context.Background(), editID, fields)
		return relationSavedMsg{relation: relation, err: err}
	}
}

func (m RelationsModel) updateDeleteConfirm(msg tea.KeyMsg) (RelationsModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.selected >= len(m.filtered) {
			m.currentView = RelationsViewList
			return m, nil
		}
		relation := m.filtered[m.selected]
		m.loading = true

		client := m.client
		return m, func() tea.Msg {
			err := client.DeleteRelation(context.Background(), relation.ID)
			return relationDeletedMsg{id: relation.ID, name: relation.Name, err: err}
		}

	case "n", "esc":
		m.currentView = RelationsViewList
	}
	return m, nil
}

func (m *RelationsModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))

	filtered := make([]models.Relation, 0, len(m.relations))
	for _, r := range m.relations {
		if query != "" && !strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}
		if m.categoryIdx >= 0 && r.CategoryType != models.Categories[m.categoryIdx] {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	m.filtered = filtered
	if m.selected >= len(m.filtered) {
		m.selected = 0
	}
}

func (m RelationsModel) View() string {
	switch m.currentView {
	case RelationsViewCreate:
		return m.form.View("New Relation")
	case RelationsViewEdit:
		return m.form.View("Edit Relation")
	case RelationsViewDeleteConfirm:
		return m.viewDeleteConfirm()
	default:
		return m.viewList()
	}
}

func (m RelationsModel) viewList() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Blue))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	categoryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Mauve))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Relations"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s", utils.Pluralize(len(m.filtered), "relation", "relations"))))
	if m.categoryIdx >= 0 {
		b.WriteString(categoryStyle.Render(fmt.Sprintf("  [%s]", models.Categories[m.categoryIdx])))
	}
	b.WriteString("\n\n")

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString("Filter: " + m.filterInput.View())
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading relations...")
		b.WriteString("\n")
	} else if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("No relations yet. Press 'n' to add one."))
		b.WriteString("\n")
	} else {
		for i, r := range m.filtered {
			line := fmt.Sprintf("%-24s %-8s", utils.Truncate(r.Name, 24), r.CategoryType)
			if r.LastInteractionDate != nil {
				line += "  " + utils.FormatRelative(*r.LastInteractionDate)
			} else {
				line += "  no interactions"
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
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
	b.WriteString(dimStyle.Italic(true).Render(
		"Enter: open • n: new • e: edit • d: delete • /: filter • c: category • r: refresh\n" +
			"Ctrl+F: search • Ctrl+G: daily digest • Ctrl+K: calendar • Ctrl+B: backup • Ctrl+L: log out"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m RelationsModel) viewDeleteConfirm() string {
	if m.selected >= len(m.filtered) {
		return ""
	}
	relation := m.filtered[m.selected]

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Red)).
		Bold(true)

	var b strings.Builder
	b.WriteString(warnStyle.Render("Delete Relation"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete %q and all of its interactions?\n", relation.Name))
	b.WriteString("This cannot be undone.\n\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " Deleting...")
	} else {
		b.WriteString("y: delete • n: cancel")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func errorText(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.UserMessage()
	}
	return err.Error()
}
