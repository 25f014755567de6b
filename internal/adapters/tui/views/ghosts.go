package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui/styles"
	"mediasweep/internal/application/commands"
)

// GhostsModel confirms the deletion of assets a link left unreferenced
type GhostsModel struct {
	ConfirmationModel
	svc        *commands.Services
	documentID int64
}

// NewGhostsModel creates a new ghost confirmation view
func NewGhostsModel(svc *commands.Services) *GhostsModel {
	return &GhostsModel{
		ConfirmationModel: NewConfirmationModel(),
		svc:               svc,
	}
}

// SetGhosts sets the ghosts found after linking a document
func (m *GhostsModel) SetGhosts(documentID int64, ghosts []int64) {
	m.documentID = documentID
	m.SetTargets(ghosts)
	m.ClearMessage()
}

// GhostsDeletedMsg reports the outcome of a ghost deletion
type GhostsDeletedMsg struct {
	Message string
	Failed  bool
}

// Init initializes the ghost view
func (m *GhostsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the ghost view
func (m *GhostsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ErrMsg:
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg,
			func() tea.Msg { return m.doDelete() },
			func() tea.Msg { return SwitchToDuplicatesMsg{} },
		)
		if handled {
			return m, cmd
		}
	}

	return m, nil
}

func (m *GhostsModel) doDelete() tea.Msg {
	if len(m.Targets) == 0 {
		return ErrMsg{Err: fmt.Errorf("no ghosts selected")}
	}

	result, err := commands.NewDeleteGhostsCommand(m.svc, m.Targets).Execute(context.Background())
	if err != nil {
		return ErrMsg{Err: err}
	}
	return GhostsDeletedMsg{Message: result.Message, Failed: len(result.Failures) > 0}
}

// View renders the ghost confirmation
func (m *GhostsModel) View() string {
	v := NewViewBuilder().Title("Delete ghosts")

	v.Line(fmt.Sprintf("Document %d no longer references these assets:", m.documentID)).BlankLine()
	for _, id := range m.Targets {
		v.Line("  " + styles.BaseKey.Render(fmt.Sprintf("#%d", id)))
	}
	v.BlankLine()
	v.Line(styles.ErrorMsg.Render("Their records and files will be deleted. This action cannot be undone!"))
	v.Muted("Assets still used by another document are skipped.").BlankLine()
	v.Message(m.Message, m.MessageErr)

	return v.Raw(RenderConfirmPrompt("Delete?")).String()
}
