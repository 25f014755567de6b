package views

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// OrphansModel lists the storage files no document uses
type OrphansModel struct {
	ViewState
	svc       *commands.Services
	viewer    ports.FileViewer
	orphans   []domain.OrphanCandidate
	total     int64
	paginator *Paginator
	loaded    bool
}

// NewOrphansModel creates a new orphans view
func NewOrphansModel(svc *commands.Services, viewer ports.FileViewer) *OrphansModel {
	return &OrphansModel{
		svc:       svc,
		viewer:    viewer,
		paginator: NewPaginator(10),
	}
}

type orphansLoadedMsg struct {
	orphans []domain.OrphanCandidate
	total   int64
}

// Init walks storage
func (m *OrphansModel) Init() tea.Cmd {
	m.loaded = false
	return m.load
}

func (m *OrphansModel) load() tea.Msg {
	result, err := commands.NewFindOrphansCommand(m.svc).Execute(context.Background())
	if err != nil {
		return ErrMsg{Err: err}
	}
	return orphansLoadedMsg{orphans: result.Orphans, total: result.TotalBytes}
}

// SetSize updates the dimensions and page size
func (m *OrphansModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.paginator.SetPageSize(m.pageSize(4))
}

// Selected returns the orphan under the cursor
func (m *OrphansModel) Selected() (domain.OrphanCandidate, bool) {
	i := m.paginator.Cursor()
	if i < 0 || i >= len(m.orphans) {
		return domain.OrphanCandidate{}, false
	}
	return m.orphans[i], true
}

// Update handles messages for the orphans view
func (m *OrphansModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case orphansLoadedMsg:
		m.orphans = msg.orphans
		m.total = msg.total
		m.loaded = true
		m.paginator.SetTotal(len(m.orphans))
		return m, nil

	case ErrMsg:
		m.loaded = true
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		switch {
		case key.Matches(msg, ListKeys.Back):
			return m, switchTo(SwitchToDashboardMsg{})
		case key.Matches(msg, ListKeys.Up):
			m.paginator.CursorUp()
		case key.Matches(msg, ListKeys.Down):
			m.paginator.CursorDown()
		case key.Matches(msg, ListKeys.Next):
			m.paginator.NextPage()
		case key.Matches(msg, ListKeys.Prev):
			m.paginator.PrevPage()
		case key.Matches(msg, ListKeys.Reload):
			m.loaded = false
			return m, m.load
		case key.Matches(msg, ListKeys.Copy):
			if o, ok := m.Selected(); ok {
				if err := clipboard.WriteAll(o.Path); err != nil {
					m.SetMessage(err.Error(), true)
				} else {
					m.SetMessage("Copied "+o.Path, false)
				}
			}
		case key.Matches(msg, ListKeys.Open):
			if o, ok := m.Selected(); ok && m.viewer != nil {
				if err := m.viewer.OpenFile(o.Path); err != nil {
					m.SetMessage(err.Error(), true)
				}
			}
		}
	}
	return m, nil
}

// View renders the orphan list
func (m *OrphansModel) View() string {
	v := NewViewBuilder().Title("Orphan files")

	switch {
	case !m.loaded:
		v.Muted("Walking storage...")
	case len(m.orphans) == 0:
		v.Muted("No orphan files.")
	default:
		v.Muted(fmt.Sprintf("%d files, %s", len(m.orphans), RenderBytes(m.total))).BlankLine()
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			o := m.orphans[i]
			v.Line(RenderRow(fmt.Sprintf("%-60s %10s", o.Path, RenderBytes(o.SizeBytes)), i == m.paginator.Cursor()))
		}
		if m.paginator.TotalPages() > 1 {
			v.Muted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
		}
	}
	v.BlankLine().Message(m.Message, m.MessageErr)

	return v.Help(ListKeys.Up, ListKeys.Down, ListKeys.Copy, ListKeys.Open, ListKeys.Reload, ListKeys.Back).String()
}
