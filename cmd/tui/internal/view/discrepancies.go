package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/webwaka/pesaflow/internal/transaction"
)

type discrepancyState int

const (
	discrepancyStateBrowse discrepancyState = iota
	discrepancyStateConfirm
)

type DiscrepanciesModel struct {
	CommonModel
	txService *transaction.Service

	state discrepancyState
	table table.Model
	ds    []*transaction.Discrepancy
	form  *huh.Form

	unresolvedOnly bool
	loading        bool
	err            error
	status         string

	formConfirm bool
}

func NewDiscrepanciesModel(txSvc *transaction.Service) DiscrepanciesModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Transaction", Width: 36},
		{Title: "Local", Width: 10},
		{Title: "Reported", Width: 10},
		{Title: "Source", Width: 16},
		{Title: "Detected", Width: 17},
		{Title: "Resolution", Width: 18},
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

	return DiscrepanciesModel{
		txService:      txSvc,
		table:          t,
		unresolvedOnly: true,
	}
}

func (m DiscrepanciesModel) Title() string { return "Discrepancy Review" }
func (m DiscrepanciesModel) ShortHelp() string {
	if m.state == discrepancyStateConfirm {
		return "Confirm | Esc: cancel"
	}
	return "Esc: back | enter: review | u: toggle unresolved | r: refresh"
}

func (m DiscrepanciesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DiscrepanciesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDiscrepanciesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ds = msg.ds
		m.refreshTable()
		return m, nil

	case reviewDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error reviewing: %v", msg.err)
		} else {
			m.status = "Marked as reviewed"
		}
		m.state = discrepancyStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case discrepancyStateBrowse:
		return m.updateBrowse(msg)
	case discrepancyStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m DiscrepanciesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "u":
			m.unresolvedOnly = !m.unresolvedOnly
			return m, m.loadCmd()
		case "enter":
			return m.enterConfirmMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DiscrepanciesModel) enterConfirmMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.ds) {
		return m, nil
	}

	d := m.ds[idx]
	if d.ResolvedAt != nil {
		m.status = "Already resolved"
		return m, nil
	}

	m.formConfirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Mark discrepancy #%d as reviewed?", d.ID)).
				Description(fmt.Sprintf("local %s, reported %s via %s", d.LocalState, d.RemoteState, d.Source)).
				Value(&m.formConfirm),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = discrepancyStateConfirm
	m.table.Blur()
	return m, m.form.Init()
}

func (m DiscrepanciesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = discrepancyStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.formConfirm {
		m.state = discrepancyStateBrowse
		m.form = nil
		m.table.Focus()
		return m, nil
	}

	return m, m.reviewCmd()
}

func (m DiscrepanciesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading discrepancies...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	scope := "Unresolved"
	if !m.unresolvedOnly {
		scope = "All"
	}

	header := fmt.Sprintf("Showing: [u] %s", activeStyle(scope))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == discrepancyStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DiscrepanciesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.ds))
	for _, d := range m.ds {
		resolution := string(d.Resolution)
		if d.ResolvedAt == nil {
			resolution = "open"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", d.ID),
			d.TransactionID.String(),
			string(d.LocalState),
			string(d.RemoteState),
			string(d.Source),
			FormatTime(d.DetectedAt),
			resolution,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadDiscrepanciesMsg struct {
	ds  []*transaction.Discrepancy
	err error
}

func (m DiscrepanciesModel) loadCmd() tea.Cmd {
	filter := transaction.DiscrepancyFilter{Unresolved: m.unresolvedOnly}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ds, err := m.txService.Discrepancies(ctx, filter)
		return loadDiscrepanciesMsg{ds: ds, err: err}
	}
}

type reviewDoneMsg struct {
	err error
}

func (m DiscrepanciesModel) reviewCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.ds) {
		return nil
	}

	id := m.ds[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return reviewDoneMsg{err: m.txService.ReviewDiscrepancy(ctx, id)}
	}
}
