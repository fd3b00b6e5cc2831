package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brewtab/brewtab/internal/share"
)

// SharesModel lists share transfers so staff can see what codes are live
// before a customer reaches the counter.
type SharesModel struct {
	CommonModel
	shareService *share.Service

	table  table.Model
	shares []*share.PendingShareTransfer

	statusFilterIdx int
	filter          share.ListFilter

	loading bool
	err     error
}

func NewSharesModel(shareSvc *share.Service) SharesModel {
	columns := []table.Column{
		{Title: "Code", Width: 8},
		{Title: "Recipient", Width: 16},
		{Title: "Amount", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Expires", Width: 10},
		{Title: "Created", Width: 17},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := SharesModel{
		shareService:    shareSvc,
		table:           t,
		statusFilterIdx: 1, // staff mostly care about live codes
	}
	m.applyFilter()

	return m
}

func (m SharesModel) Title() string { return "Share Transfers" }
func (m SharesModel) ShortHelp() string {
	return "Esc: back | s: status filter | r: refresh"
}

func (m SharesModel) Init() tea.Cmd {
	return m.loadSharesCmd()
}

func (m SharesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSharesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.shares = msg.shares
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSharesCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 5
			m.applyFilter()
			return m, m.loadSharesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SharesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading share transfers...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Pending", "Verified", "Expired", "Cancelled"}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(statusLabels[m.statusFilterIdx]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *SharesModel) applyFilter() {
	switch m.statusFilterIdx {
	case 1:
		m.filter.Status = new(share.StatusPending)
	case 2:
		m.filter.Status = new(share.StatusVerified)
	case 3:
		m.filter.Status = new(share.StatusExpired)
	case 4:
		m.filter.Status = new(share.StatusCancelled)
	default:
		m.filter.Status = nil
	}
}

func (m *SharesModel) refreshTable() {
	now := time.Now()

	rows := make([]table.Row, 0, len(m.shares))
	for _, p := range m.shares {
		expires := "-"
		if p.Status == share.StatusPending {
			expires = FormatCountdown(p.ExpiresAt, now)
		}

		rows = append(rows, table.Row{
			p.VerificationCode,
			p.RecipientPhone,
			FormatAmount(p.Amount),
			string(p.Status),
			expires,
			FormatDate(p.CreatedAt),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadSharesMsg struct {
	shares []*share.PendingShareTransfer
	err    error
}

func (m SharesModel) loadSharesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		shares, err := m.shareService.List(ctx, m.filter)
		return loadSharesMsg{shares: shares, err: err}
	}
}
