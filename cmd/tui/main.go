package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/webwaka/pesaflow/cmd/tui/internal/view"
	"github.com/webwaka/pesaflow/internal/config"
	"github.com/webwaka/pesaflow/internal/database"
	"github.com/webwaka/pesaflow/internal/transaction"
	txStore "github.com/webwaka/pesaflow/internal/transaction/store"
)

type model struct {
	txService *transaction.Service

	currentView View

	transactionsView  view.TransactionsModel
	discrepanciesView view.DiscrepanciesModel
}

type View int

const (
	ViewMenu          View = 0
	ViewTransactions  View = 1
	ViewDiscrepancies View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))

	return model{
		txService:         txSvc,
		currentView:       ViewMenu,
		transactionsView:  view.NewTransactionsModel(txSvc),
		discrepanciesView: view.NewDiscrepanciesModel(txSvc),
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
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.txService)

				return m, m.transactionsView.Init()
			case "2":
				m.currentView = ViewDiscrepancies
				m.discrepanciesView = view.NewDiscrepanciesModel(m.txService)

				return m, m.discrepanciesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewDiscrepancies:
		var newModel tea.Model
		newModel, cmd = m.discrepanciesView.Update(msg)
		m.discrepanciesView = newModel.(view.DiscrepanciesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Pesaflow Ops\n\n" +
				"1. Browse Transactions\n" +
				"2. Review Discrepancies\n\n" +
				"q. Quit",
		)
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewDiscrepancies:
		return m.discrepanciesView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
