package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the contract for the ops console screens: the transactions browser
// and the discrepancy review queue both satisfy it.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all screens.
type CommonModel struct{}

// BackMsg returns control to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
