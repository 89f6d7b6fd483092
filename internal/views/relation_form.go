package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/models"
	"logbook/termbook/internal/utils"
)

type relationFormField int

const (
	formFieldName relationFormField = iota
	formFieldCategory
	formFieldLocation
	formFieldEmail
	formFieldPhone
	formFieldCount
)

// RelationForm backs both the create and edit screens. An empty editID
// means create.
type RelationForm struct {
	name     textinput.Model
	location textinput.Model
	email    textinput.Model
	phone    textinput.Model

	category models.CategoryType
	field    relationFormField

	editID     string
	submitting bool
}

func NewRelationForm(existing *models.Relation) RelationForm {
	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 100
		in.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))
		return in
	}

	form := RelationForm{
		name:     newInput("name (required)"),
		location: newInput("location"),
		email:    newInput("email address"),
		phone:    newInput("phone number"),
		category: models.CategoryOthers,
	}

	if existing != nil {
		form.editID = existing.ID
		form.name.SetValue(existing.Name)
		form.location.SetValue(existing.Location)
		form.email.SetValue(existing.EmailAddress)
		form.phone.SetValue(existing.PhoneNumber)
		form.category = existing.CategoryType
	}

	return form
}

func (f *RelationForm) Focus() tea.Cmd {
	f.name.Blur()
	f.location.Blur()
	f.email.Blur()
	f.phone.Blur()
	switch f.field {
	case formFieldName:
		return f.name.Focus()
	case formFieldLocation:
		return f.location.Focus()
	case formFieldEmail:
		return f.email.Focus()
	case formFieldPhone:
		return f.phone.Focus()
	}
	return nil
}

func (f *RelationForm) Next() {
	f.field = (f.field + 1) % formFieldCount
}

func (f *RelationForm) Prev() {
	f.field = (f.field + formFieldCount - 1) % formFieldCount
}

func (f RelationForm) OnLastField() bool {
	return f.field == formFieldCount-1
}

func (f RelationForm) OnCategoryField() bool {
	return f.field == formFieldCategory
}

func (f *RelationForm) CycleCategory(forward bool) {
	idx := 0
	for i, c := range models.Categories {
		if c == f.category {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(models.Categories)
	} else {
		idx = (idx + len(models.Categories) - 1) % len(models.Categories)
	}
	f.category = models.Categories[idx]
}

func (f RelationForm) Fields() models.RelationFields {
	return models.RelationFields{
		Name:         strings.TrimSpace(f.name.Value()),
		CategoryType: f.category,
		Location:     strings.TrimSpace(f.location.Value()),
		EmailAddress: strings.TrimSpace(f.email.Value()),
		PhoneNumber:  strings.TrimSpace(f.phone.Value()),
	}
}

func (f RelationForm) Update(msg tea.Msg) (RelationForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.field {
	case formFieldName:
		f.name, cmd = f.name.Update(msg)
	case formFieldLocation:
		f.location, cmd = f.location.Update(msg)
	case formFieldEmail:
		f.email, cmd = f.email.Update(msg)
	case formFieldPhone:
		f.phone, cmd = f.phone.Update(msg)
	}
	return f, cmd
}

func (f RelationForm) View(title string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	activeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Mauve)).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	categoryLine := ""
	for i, c := range models.Categories {
		if i > 0 {
			categoryLine += "  "
		}
		if c == f.category {
			categoryLine += activeStyle.Render("[" + string(c) + "]")
		} else {
			categoryLine += labelStyle.Render(string(c))
		}
	}
	if f.field == formFieldCategory {
		categoryLine = "> " + categoryLine
	} else {
		categoryLine = "  " + categoryLine
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Name"))
	b.WriteString("\n")
	b.WriteString(f.name.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Category"))
	b.WriteString("\n")
	b.WriteString(categoryLine)
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Location"))
	b.WriteString("\n")
	b.WriteString(f.location.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(f.email.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Phone"))
	b.WriteString("\n")
	b.WriteString(f.phone.View())
	b.WriteString("\n\n")

	if f.submitting {
		b.WriteString("Saving...")
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Tab: next field • Left/Right: category • Ctrl+S: save • Esc: cancel"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
