package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mediasweep/internal/adapters/tui/styles"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

// ListKeyMap defines key bindings shared by the list views
type ListKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Select key.Binding
	Copy   key.Binding
	Open   key.Binding
	Reload key.Binding
	Back   key.Binding
}

var ListKeys = ListKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Next: key.NewBinding(
		key.WithKeys("l", "right", "pgdown"),
		key.WithHelp("l/→", "next page"),
	),
	Prev: key.NewBinding(
		key.WithKeys("h", "left", "pgup"),
		key.WithHelp("h/←", "prev page"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "link"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
}

// DuplicatesModel lists the corpus duplicate groups
type DuplicatesModel struct {
	ViewState
	svc       *commands.Services
	groups    []domain.DuplicateGroup
	paginator *Paginator
	loaded    bool
}

// NewDuplicatesModel creates a new duplicates view
func NewDuplicatesModel(svc *commands.Services) *DuplicatesModel {
	return &DuplicatesModel{
		svc:       svc,
		paginator: NewPaginator(10),
	}
}

type duplicatesLoadedMsg struct {
	groups []domain.DuplicateGroup
}

// Init loads the groups
func (m *DuplicatesModel) Init() tea.Cmd {
	return m.load
}

func (m *DuplicatesModel) load() tea.Msg {
	result, err := commands.NewFindDuplicatesCommand(m.svc).Execute(context.Background())
	if err != nil {
		return ErrMsg{Err: err}
	}
	return duplicatesLoadedMsg{groups: result.Groups}
}

// SetSize updates the dimensions and page size
func (m *DuplicatesModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.paginator.SetPageSize(m.pageSize(4))
}

// Selected returns the group under the cursor
func (m *DuplicatesModel) Selected() (domain.DuplicateGroup, bool) {
	i := m.paginator.Cursor()
	if i < 0 || i >= len(m.groups) {
		return domain.DuplicateGroup{}, false
	}
	return m.groups[i], true
}

// Update handles messages for the duplicates view
func (m *DuplicatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case duplicatesLoadedMsg:
		m.groups = msg.groups
		m.loaded = true
		m.paginator.SetTotal(len(m.groups))
		return m, nil

	case ErrMsg:
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
			return m, m.load
		case key.Matches(msg, ListKeys.Copy):
			if g, ok := m.Selected(); ok {
				ids := RenderIDs(g.DuplicateIDs())
				if err := clipboard.WriteAll(ids); err != nil {
					m.SetMessage(err.Error(), true)
				} else {
					m.SetMessage("Copied "+ids, false)
				}
			}
		case key.Matches(msg, ListKeys.Select):
			if g, ok := m.Selected(); ok {
				return m, switchTo(SwitchToLinkMsg{Group: g})
			}
		}
	}
	return m, nil
}

// View renders the duplicate groups
func (m *DuplicatesModel) View() string {
	v := NewViewBuilder().Title("Duplicate groups")

	switch {
	case !m.loaded:
		v.Muted("Loading...")
	case len(m.groups) == 0:
		v.Muted("No duplicates found.")
	default:
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			v.Line(RenderRow(renderGroup(m.groups[i]), i == m.paginator.Cursor()))
		}
		if m.paginator.TotalPages() > 1 {
			v.Muted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
		}
	}
	v.BlankLine().Message(m.Message, m.MessageErr)

	return v.Help(ListKeys.Up, ListKeys.Down, ListKeys.Select, ListKeys.Copy, ListKeys.Reload, ListKeys.Back).String()
}

func renderGroup(g domain.DuplicateGroup) string {
	parts := make([]string, 0, len(g.Duplicates))
	for _, d := range g.Duplicates {
		style := lipgloss.NewStyle().Foreground(styles.SourceColor(d.Source))
		parts = append(parts, style.Render(fmt.Sprintf("%d", d.ID)))
	}
	return fmt.Sprintf("%s  %s  %s",
		styles.BaseKey.Render(g.BaseKey),
		styles.PrimaryAsset.Render(fmt.Sprintf("#%d", g.PrimaryID)),
		strings.Join(parts, " "))
}
