package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui/views"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewDuplicates
	ViewLink
	ViewGhosts
	ViewOrphans
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state      ViewState
	dashboard  *views.DashboardModel
	duplicates *views.DuplicatesModel
	link       *views.LinkModel
	ghosts     *views.GhostsModel
	orphans    *views.OrphansModel
	help       *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(svc *commands.Services, viewer ports.FileViewer, scan views.ScanConfig) *App {
	return &App{
		state:      ViewDashboard,
		dashboard:  views.NewDashboardModel(svc, scan),
		duplicates: views.NewDuplicatesModel(svc),
		link:       views.NewLinkModel(svc),
		ghosts:     views.NewGhostsModel(svc),
		orphans:    views.NewOrphansModel(svc, viewer),
		help:       views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.duplicates.SetSize(msg.Width, msg.Height)
		a.link.SetSize(msg.Width, msg.Height)
		a.ghosts.SetSize(msg.Width, msg.Height)
		a.orphans.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToDashboardMsg:
		a.state = ViewDashboard
		return a, a.dashboard.Reload()

	case views.SwitchToDuplicatesMsg:
		a.state = ViewDuplicates
		return a, a.duplicates.Init()

	case views.SwitchToLinkMsg:
		a.state = ViewLink
		a.link.SetGroup(msg.Group)
		return a, a.link.Init()

	case views.SwitchToGhostsMsg:
		a.state = ViewGhosts
		a.ghosts.SetGhosts(msg.DocumentID, msg.Ghosts)
		return a, nil

	case views.SwitchToOrphansMsg:
		a.state = ViewOrphans
		return a, a.orphans.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	// Ghost deletion returns to the refreshed group list
	case views.GhostsDeletedMsg:
		a.state = ViewDuplicates
		a.duplicates.SetMessage(msg.Message, msg.Failed)
		return a, a.duplicates.Init()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewDashboard:
		_, cmd = a.dashboard.Update(msg)
	case ViewDuplicates:
		_, cmd = a.duplicates.Update(msg)
	case ViewLink:
		_, cmd = a.link.Update(msg)
	case ViewGhosts:
		_, cmd = a.ghosts.Update(msg)
	case ViewOrphans:
		_, cmd = a.orphans.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewDuplicates:
		return a.duplicates.View()
	case ViewLink:
		return a.link.View()
	case ViewGhosts:
		return a.ghosts.View()
	case ViewOrphans:
		return a.orphans.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.dashboard.View()
	}
}
