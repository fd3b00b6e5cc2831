package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/brewtab/brewtab/cmd/console/internal/view"
	"github.com/brewtab/brewtab/internal/account"
	accountStore "github.com/brewtab/brewtab/internal/account/store"
	"github.com/brewtab/brewtab/internal/config"
	"github.com/brewtab/brewtab/internal/database"
	"github.com/brewtab/brewtab/internal/importer"
	"github.com/brewtab/brewtab/internal/share"
	shareStore "github.com/brewtab/brewtab/internal/share/store"
	"github.com/brewtab/brewtab/internal/wallet"
	walletStore "github.com/brewtab/brewtab/internal/wallet/store"
)

type model struct {
	shareService  *share.Service
	importService *importer.Service
	staffID       string

	currentView View

	sharesView view.SharesModel
	redeemView view.RedeemModel
	grantsView view.GrantsModel
}

type View int

const (
	ViewMenu   View = 0
	ViewShares View = 1
	ViewRedeem View = 2
	ViewGrants View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	accountSvc := account.NewService(accountStore.New(db), cfg.Wallet.SignupBonus)
	walletSvc := wallet.NewService(walletStore.New(db), accountSvc)
	shareSvc := share.NewService(shareStore.New(db), cfg.Share.ExpiryWindow)
	importSvc := importer.NewService(accountSvc, walletSvc)

	return model{
		shareService:  shareSvc,
		importService: importSvc,
		staffID:       cfg.Console.StaffID,
		currentView:   ViewMenu,
		sharesView:    view.NewSharesModel(shareSvc),
		redeemView:    view.NewRedeemModel(shareSvc, cfg.Console.StaffID),
		grantsView:    view.NewGrantsModel(importSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRedeem
				m.redeemView = view.NewRedeemModel(m.shareService, m.staffID)

				return m, m.redeemView.Init()
			case "2":
				m.currentView = ViewShares
				m.sharesView = view.NewSharesModel(m.shareService)

				return m, m.sharesView.Init()
			case "3":
				m.currentView = ViewGrants
				m.grantsView = view.NewGrantsModel(m.importService)

				return m, m.grantsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewShares:
		var newModel tea.Model
		newModel, cmd = m.sharesView.Update(msg)
		m.sharesView = newModel.(view.SharesModel)
	case ViewRedeem:
		var newModel tea.Model
		newModel, cmd = m.redeemView.Update(msg)
		m.redeemView = newModel.(view.RedeemModel)
	case ViewGrants:
		var newModel tea.Model
		newModel, cmd = m.grantsView.Update(msg)
		m.grantsView = newModel.(view.GrantsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Brewtab Counter Console\n\n" +
				"1. Redeem Code\n" +
				"2. Share Transfers\n" +
				"3. Import Grants\n\n" +
				"q. Quit",
		)
	case ViewShares:
		return m.sharesView.View()
	case ViewRedeem:
		return m.redeemView.View()
	case ViewGrants:
		return m.grantsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run console", "error", err)
		os.Exit(1)
	}
}
