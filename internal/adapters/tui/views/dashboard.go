package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui/styles"
	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

// DashboardKeyMap defines key bindings for the dashboard
type DashboardKeyMap struct {
	Scan       key.Binding
	Duplicates key.Binding
	Orphans    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var DashboardKeys = DashboardKeyMap{
	Scan: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "scan"),
	),
	Duplicates: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "duplicates"),
	),
	Orphans: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "orphans"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// DashboardModel shows the last corpus scan and starts new ones
type DashboardModel struct {
	ViewState
	svc     *commands.Services
	opts    ScanConfig
	last    *domain.CorpusScanResult
	spinner spinner.Model
}

// ScanConfig holds the worker count and timeout of dashboard scans
type ScanConfig struct {
	Workers int
	Timeout time.Duration
}

// NewDashboardModel creates a new dashboard
func NewDashboardModel(svc *commands.Services, opts ScanConfig) *DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &DashboardModel{
		svc:     svc,
		opts:    opts,
		spinner: sp,
	}
}

type lastScanMsg struct {
	result *domain.CorpusScanResult
}

type scanFinishedMsg struct {
	result *commands.ScanCorpusResult
}

// Init loads the stored scan record
func (m *DashboardModel) Init() tea.Cmd {
	return m.loadLastScan
}

// Reload refreshes the stored scan record
func (m *DashboardModel) Reload() tea.Cmd {
	return m.loadLastScan
}

func (m *DashboardModel) loadLastScan() tea.Msg {
	result, err := commands.NewLastScanCommand(m.svc).Execute(context.Background())
	if errors.Is(err, application.ErrNotFound) {
		return lastScanMsg{}
	}
	if err != nil {
		return ErrMsg{Err: err}
	}
	return lastScanMsg{result: result}
}

func (m *DashboardModel) runScan() tea.Msg {
	result, err := commands.NewScanCorpusCommand(m.svc, m.opts.Workers, m.opts.Timeout).Execute(context.Background())
	if err != nil {
		return ErrMsg{Err: err}
	}
	return scanFinishedMsg{result: result}
}

// Update handles messages for the dashboard
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case lastScanMsg:
		m.last = msg.result
		return m, nil

	case scanFinishedMsg:
		m.Busy = false
		m.SetMessage(msg.result.Message, msg.result.Summary.Aborted)
		return m, m.loadLastScan

	case ErrMsg:
		m.Busy = false
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, DashboardKeys.Quit) {
			return m, tea.Quit
		}
		if m.Busy {
			return m, nil
		}
		m.ClearMessage()

		switch {
		case key.Matches(msg, DashboardKeys.Scan):
			m.Busy = true
			return m, tea.Batch(m.spinner.Tick, m.runScan)
		case key.Matches(msg, DashboardKeys.Duplicates):
			return m, switchTo(SwitchToDuplicatesMsg{})
		case key.Matches(msg, DashboardKeys.Orphans):
			return m, switchTo(SwitchToOrphansMsg{})
		case key.Matches(msg, DashboardKeys.Help):
			return m, switchTo(SwitchToHelpMsg{})
		}
	}

	return m, nil
}

// View renders the dashboard
func (m *DashboardModel) View() string {
	v := NewViewBuilder().Title("mediasweep")

	if m.last == nil {
		v.Muted("No completed scan yet. Press s to scan the corpus.").BlankLine()
	} else {
		v.Raw(styles.Panel.Render(RenderSummary(m.last))).BlankLine().BlankLine()
	}

	if m.Busy {
		v.Line(m.spinner.View() + " Scanning documents...").BlankLine()
	}
	v.Message(m.Message, m.MessageErr)

	return v.Help(
		DashboardKeys.Scan,
		DashboardKeys.Duplicates,
		DashboardKeys.Orphans,
		DashboardKeys.Help,
		DashboardKeys.Quit,
	).String()
}

// RenderSummary formats a stored scan record
func RenderSummary(r *domain.CorpusScanResult) string {
	s := r.Summary
	var b strings.Builder
	b.WriteString(RenderLabelValue("Last scan", s.StartedAt.Local().Format("2006-01-02 15:04")))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Run", s.RunID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d documents  %d assets  %d uses  %d dangling\n", s.Documents, s.Assets, s.Uses, s.Dangling)
	fmt.Fprintf(&b, "%d duplicate groups  %d orphan files (%s)", len(r.Duplicates), len(r.Orphans), RenderBytes(orphanBytes(r.Orphans)))
	if len(s.Failed) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.WarningMsg.Render(fmt.Sprintf("%d document(s) could not be read", len(s.Failed))))
	}
	return b.String()
}

func orphanBytes(orphans []domain.OrphanCandidate) int64 {
	var total int64
	for _, o := range orphans {
		total += o.SizeBytes
	}
	return total
}
