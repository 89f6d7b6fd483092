package views

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/utils"
)

type DailySummaryModel struct {
	client *api.Client

	interactions []models.DailyInteraction
	summary      string

	generation int

	loading bool
	spinner *utils.Spinner
	error   string
}

type dailySummaryMsg struct {
	generation   int
	interactions []models.DailyInteraction
	summary      string
	err          error
}

func NewDailySummaryModel(client *api.Client) *DailySummaryModel {
	return &DailySummaryModel{
		client:  client,
		spinner: utils.NewSpinner(),
	}
}

// Generate collects today's interactions across every relation and
// sends them through the daily digest endpoint.
func (m *DailySummaryModel) Generate() tea.Cmd {
	m.generation++
	m.loading = true
	m.error = ""
	m.summary = ""

	gen := m.generation
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()

		relations, err := client.ListRelations(ctx)
		if err != nil {
			return dailySummaryMsg{generation: gen, err: err}
		}

		today := time.Now()
		var todays []models.DailyInteraction
		for _, relation := range relations {
			// Relations untouched today cannot have a note from today.
			if relation.LastInteractionDate == nil || !sameDay(*relation.LastInteractionDate, today) {
				continue
			}

			interactions, err := client.ListInteractions(ctx, relation.ID)
			if err != nil {
				return dailySummaryMsg{generation: gen, err: err}
			}
			for _, note := range interactions {
				if !sameDay(note.Date, today) {
					continue
				}
				todays = append(todays, models.DailyInteraction{
					Content:          note.Content,
					Date:             note.Date.Format(time.RFC3339),
					RelationName:     relation.Name,
					RelationCategory: string(relation.CategoryType),
				})
			}
		}

		if len(todays) == 0 {
			return dailySummaryMsg{generation: gen}
		}

		summary, err := client.SummarizeDaily(ctx, todays)
		return dailySummaryMsg{generation: gen, interactions: todays, summary: summary, err: err}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func (m DailySummaryModel) Update(msg tea.Msg) (DailySummaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dailySummaryMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.interactions = msg.interactions
		m.summary = msg.summary
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !m.loading {
			return m, m.Generate()
		}
	}

	return m, nil
}

func (m DailySummaryModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green)).
		Padding(1, 0)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Daily Digest — " + utils.FormatDate(time.Now())))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Generating digest...")
		b.WriteString("\n")
	} else if m.error != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
		b.WriteString("\n")
	} else if m.summary == "" {
		b.WriteString(dimStyle.Render("No interactions logged today."))
		b.WriteString("\n")
	} else {
		b.WriteString(summaryStyle.Render(m.summary))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(utils.Pluralize(len(m.interactions), "interaction", "interactions") + " today:"))
		b.WriteString("\n")
		for _, note := range m.interactions {
			b.WriteString("  " + note.RelationName + ": " + utils.Truncate(utils.FirstLine(note.Content), 60))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Italic(true).Render("r: regenerate • Esc: back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
