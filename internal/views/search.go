package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logbook/termbook/internal/api"
	"logbook/termbook/internal/models"
	"logbook/termbook/internal/utils"
)

var searchModes = []models.SearchMode{models.SearchHybrid, models.SearchKeyword, models.SearchSemantic}

type SearchModel struct {
	client     *api.Client
	matchCount int

	input    textinput.Model
	modeIdx  int
	selected int

	response *models.SearchResponse

	generation int

	loading bool
	spinner *utils.Spinner
	error   string

	width  int
	height int
}

type searchResultsMsg struct {
	generation int
	response   *models.SearchResponse
	err        error
}

func NewSearchModel(client *api.Client, matchCount int) *SearchModel {
	input := textinput.New()
	input.Placeholder = "ask about your relations..."
	input.CharLimit = 300
	input.Focus()

	return &SearchModel{
		client:     client,
		matchCount: matchCount,
		input:      input,
		spinner:    utils.NewSpinner(),
	}
}

func (m *SearchModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.error = errorText(msg.err)
			return m, nil
		}
		m.response = msg.response
		m.selected = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.submit()

		case "ctrl+t":
			m.modeIdx = (m.modeIdx + 1) % len(searchModes)
			return m, nil

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.response != nil && m.selected < len(m.response.Results)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SearchModel) submit() (SearchModel, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	m.generation++
	m.loading = true
	m.error = ""

	gen := m.generation
	client := m.client
	mode := searchModes[m.modeIdx]
	matchCount := m.matchCount
	return m, func() tea.Msg {
		response, err := client.Search(context.Background(), query, mode, matchCount)
		return searchResultsMsg{generation: gen, response: response, err: err}
	}
}

func (m SearchModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	modeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Mauve))

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Blue))

	answerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green)).
		Padding(1, 0)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString(modeStyle.Render("  [" + string(searchModes[m.modeIdx]) + "]"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Searching...")
		b.WriteString("\n")
	}
	if m.error != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render(m.error))
		b.WriteString("\n")
	}

	if m.response != nil && !m.loading {
		if m.response.LLMAnswer != "" {
			b.WriteString(answerStyle.Render(m.response.LLMAnswer))
			b.WriteString("\n")
		}

		if len(m.response.Results) == 0 {
			b.WriteString(dimStyle.Render("No matches."))
			b.WriteString("\n")
		}
		for i, result := range m.response.Results {
			name := result.RelationName
			if name == "" {
				name = result.RelationshipID
			}
			line := fmt.Sprintf("%-20s %s  %s",
				utils.Truncate(name, 20),
				result.InteractionDate,
				utils.Truncate(utils.FirstLine(result.Details), 50))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Italic(true).Render("Enter: search • Ctrl+T: cycle mode • Esc: back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
