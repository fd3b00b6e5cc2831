package view

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brewtab/brewtab/internal/importer"
)

// GrantsModel imports a promotional grant sheet from a local CSV file.
type GrantsModel struct {
	CommonModel
	importService *importer.Service

	pathInput textinput.Model

	result  *importer.Result
	status  string
	loading bool
}

func NewGrantsModel(importSvc *importer.Service) GrantsModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/grants.csv"
	ti.Width = 60
	ti.Prompt = "File: "
	ti.Focus()

	return GrantsModel{
		importService: importSvc,
		pathInput:     ti,
	}
}

func (m GrantsModel) Title() string { return "Import Grants" }
func (m GrantsModel) ShortHelp() string {
	return "Enter: import | Esc: back"
}

func (m GrantsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m GrantsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.status = "Enter a file path"
				return m, nil
			}

			m.loading = true
			m.result = nil
			m.status = ""

			return m, m.importCmd(path)
		}

	case grantsResultMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Import failed: %v", msg.err)
			return m, nil
		}

		m.result = msg.result
		m.status = ""

		return m, nil
	}

	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m GrantsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Importing grants...")
	}

	content := fmt.Sprintf("Import a CSV of promotional grants (phone, amount, note):\n\n%s", m.pathInput.View())

	if m.status != "" {
		content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status)
	}

	if m.result != nil {
		summary := fmt.Sprintf("Applied %d grants.", m.result.Applied)
		if len(m.result.Skipped) > 0 {
			summary += fmt.Sprintf(" Skipped %d:", len(m.result.Skipped))
			for _, s := range m.result.Skipped {
				summary += fmt.Sprintf("\n  %s: %s", s.Grant.Phone, s.Reason)
			}
		}

		content += "\n\n" + summary
	}

	content += "\n\n(Enter to import, Esc to back)"

	return lipgloss.NewStyle().Padding(2).Render(content)
}

// Messages

type grantsResultMsg struct {
	result *importer.Result
	err    error
}

func (m GrantsModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return grantsResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.importService.ImportGrants(ctx, f)
		return grantsResultMsg{result: res, err: err}
	}
}
