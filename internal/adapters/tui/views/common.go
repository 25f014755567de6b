package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
	Busy       bool // A command is running; key input is ignored
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// pageSize returns how many list rows fit below a header of the given height
func (s *ViewState) pageSize(header int) int {
	if s.Height <= header+5 {
		return 10
	}
	return s.Height - header - 5
}

// View switching messages

type SwitchToDashboardMsg struct{}

type SwitchToDuplicatesMsg struct{}

type SwitchToOrphansMsg struct{}

type SwitchToHelpMsg struct{}

// SwitchToLinkMsg opens the link form for one duplicate group
type SwitchToLinkMsg struct {
	Group domain.DuplicateGroup
}

// SwitchToGhostsMsg asks to confirm the deletion of ghost assets
type SwitchToGhostsMsg struct {
	DocumentID int64
	Ghosts     []int64
}

// ErrMsg reports a failed command to the active view
type ErrMsg struct {
	Err error
}

func switchTo(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
