package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webwaka/pesaflow/internal/transaction"
)

// stateFilters are the values the [s] key cycles through. nil means all.
var stateFilters = []*transaction.State{
	nil,
	new(transaction.StateCreated),
	new(transaction.StateSubmitted),
	new(transaction.StatePending),
	new(transaction.StateSuccess),
	new(transaction.StateFailed),
	new(transaction.StateRejected),
	new(transaction.StateExpired),
}

type TransactionsModel struct {
	CommonModel
	txService *transaction.Service

	table table.Model
	txs   []*transaction.Transaction

	stateFilterIdx int

	filter  transaction.ListFilter
	loading bool
	err     error
}

func NewTransactionsModel(txSvc *transaction.Service) TransactionsModel {
	columns := []table.Column{
		{Title: "Created", Width: 17},
		{Title: "Adapter", Width: 10},
		{Title: "Reference", Width: 20},
		{Title: "State", Width: 10},
		{Title: "Amount", Width: 16},
		{Title: "Direction", Width: 12},
		{Title: "External ID", Width: 16},
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

	return TransactionsModel{
		txService: txSvc,
		table:     t,
		filter:    transaction.ListFilter{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }
func (m TransactionsModel) ShortHelp() string {
	return "Esc: back | s: state filter | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTransactionsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.txs = msg.txs
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
			return m, m.loadTxsCmd()
		case "s":
			m.stateFilterIdx = (m.stateFilterIdx + 1) % len(stateFilters)
			m.filter.State = stateFilters[m.stateFilterIdx]
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if f := stateFilters[m.stateFilterIdx]; f != nil {
		filterLabel = string(*f)
	}

	header := fmt.Sprintf("Filter: [s] State: %s", activeStyle(filterLabel))

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

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatTime(tx.CreatedAt),
			tx.AdapterID,
			tx.ClientReference,
			string(tx.State),
			FormatAmount(tx.Amount, tx.Currency),
			string(tx.Direction),
			tx.ExternalID,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadTransactionsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, m.filter)
		return loadTransactionsMsg{txs: txs, err: err}
	}
}
