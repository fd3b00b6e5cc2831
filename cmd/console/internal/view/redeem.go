package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/brewtab/brewtab/internal/share"
	"github.com/brewtab/brewtab/internal/wallet"
)

type redeemState int

const (
	redeemStateInput redeemState = iota
	redeemStateConfirm
	redeemStateDone
)

// RedeemModel walks staff through verifying a code the customer shows at the
// counter: look it up, confirm the amount out loud, then apply the debit.
type RedeemModel struct {
	CommonModel
	shareService *share.Service
	staffID      string

	state redeemState

	codeInput textinput.Model
	form      *huh.Form

	preview   *share.PendingShareTransfer
	confirmed bool

	result *share.RedeemResult

	status  string
	loading bool
}

func NewRedeemModel(shareSvc *share.Service, staffID string) RedeemModel {
	ti := textinput.New()
	ti.Placeholder = "6-character code"
	ti.CharLimit = 8 // leave room for a dash or space
	ti.Width = 12
	ti.Prompt = "Code: "
	ti.Focus()

	return RedeemModel{
		shareService: shareSvc,
		staffID:      staffID,
		codeInput:    ti,
		state:        redeemStateInput,
	}
}

func (m RedeemModel) Title() string { return "Redeem Code" }
func (m RedeemModel) ShortHelp() string {
	return "Enter: continue | Esc: back"
}

func (m RedeemModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RedeemModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			if m.state == redeemStateInput {
				return m, Back
			}

			// Back to code entry from confirm or result
			return m.reset(), textinput.Blink
		}

		if msg.Type == tea.KeyEnter {
			switch m.state {
			case redeemStateInput:
				code := share.NormalizeCode(m.codeInput.Value())
				if len(code) != share.CodeLength {
					m.status = fmt.Sprintf("Codes are %d characters", share.CodeLength)
					return m, nil
				}

				m.loading = true
				m.status = ""

				return m, m.lookupCmd(code)

			case redeemStateDone:
				return m.reset(), textinput.Blink
			}
		}

	case redeemLookupMsg:
		m.loading = false
		if msg.err != nil {
			m.status = redeemErrText(msg.err)
			return m, nil
		}

		m.preview = msg.share
		m.confirmed = false
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Key("confirm").
					Title(fmt.Sprintf("Hand over %s in credits to %s?",
						FormatAmount(msg.share.Amount), msg.share.RecipientPhone)).
					Affirmative("Redeem").
					Negative("Cancel").
					Value(&m.confirmed),
			),
		).WithShowHelp(false)

		m.state = redeemStateConfirm

		return m, m.form.Init()

	case redeemResultMsg:
		m.loading = false
		m.state = redeemStateDone

		if msg.err != nil {
			m.status = redeemErrText(msg.err)
			return m, nil
		}

		m.result = msg.result
		m.status = ""

		return m, nil
	}

	switch m.state {
	case redeemStateInput:
		m.codeInput, cmd = m.codeInput.Update(msg)
		return m, cmd

	case redeemStateConfirm:
		form, formCmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, formCmd
		}

		if !m.form.GetBool("confirm") {
			return m.reset(), textinput.Blink
		}

		m.loading = true

		return m, m.redeemCmd(m.preview.VerificationCode)
	}

	return m, cmd
}

func (m RedeemModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Working...")
	}

	switch m.state {
	case redeemStateInput:
		content := fmt.Sprintf("Enter the code from the customer's SMS:\n\n%s", m.codeInput.View())
		if m.status != "" {
			content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status)
		}
		content += "\n\n(Enter to look up, Esc to back)"

		return lipgloss.NewStyle().Padding(2).Render(content)

	case redeemStateConfirm:
		info := fmt.Sprintf(
			"Code:      %s\nRecipient: %s\nAmount:    %s\nExpires:   %s\n",
			m.preview.VerificationCode,
			m.preview.RecipientPhone,
			FormatAmount(m.preview.Amount),
			FormatCountdown(m.preview.ExpiresAt, time.Now()),
		)

		return lipgloss.NewStyle().Padding(2).Render(info + "\n" + m.form.View())

	case redeemStateDone:
		if m.status != "" {
			return lipgloss.NewStyle().Padding(2).Render(
				lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status) +
					"\n\n(Enter for next code, Esc to back)",
			)
		}

		done := fmt.Sprintf(
			"Redeemed!\n\nAmount:         %s\nSender balance: %s\n\n(Enter for next code, Esc to back)",
			FormatAmount(-m.result.Transaction.Amount),
			FormatAmount(m.result.Transaction.BalanceAfter),
		)

		return lipgloss.NewStyle().Padding(2).Render(done)
	}

	return ""
}

func (m RedeemModel) reset() RedeemModel {
	m.state = redeemStateInput
	m.form = nil
	m.preview = nil
	m.result = nil
	m.status = ""
	m.codeInput.SetValue("")
	m.codeInput.Focus()

	return m
}

func redeemErrText(err error) string {
	switch {
	case errors.Is(err, share.ErrCodeNotFound):
		return "No transfer with that code."
	case errors.Is(err, share.ErrCodeExpired):
		return "This code has expired. The sender keeps the credits."
	case errors.Is(err, share.ErrAlreadyVerified):
		return "This code was already redeemed."
	case errors.Is(err, share.ErrAlreadyCancelled):
		return "The sender cancelled this transfer."
	case errors.Is(err, wallet.ErrInsufficientBalance):
		return "The sender no longer has enough credits to cover this transfer."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// Messages

type redeemLookupMsg struct {
	share *share.PendingShareTransfer
	err   error
}

// lookupCmd previews a pending transfer by code so staff can confirm the
// amount before any money moves.
func (m RedeemModel) lookupCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		pending, err := m.shareService.List(ctx, share.ListFilter{Status: new(share.StatusPending)})
		if err != nil {
			return redeemLookupMsg{err: err}
		}

		for _, p := range pending {
			if p.VerificationCode == code {
				if p.Lapsed(time.Now()) {
					return redeemLookupMsg{err: share.ErrCodeExpired}
				}

				return redeemLookupMsg{share: p}
			}
		}

		return redeemLookupMsg{err: share.ErrCodeNotFound}
	}
}

type redeemResultMsg struct {
	result *share.RedeemResult
	err    error
}

func (m RedeemModel) redeemCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.shareService.Redeem(ctx, code, m.staffID)
		return redeemResultMsg{result: res, err: err}
	}
}
