package views

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui/styles"
	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

const (
	fieldDocument = iota
	fieldDuplicates
	fieldVariants
)

// LinkModel collects the arguments of a link-and-regenerate run for one group
type LinkModel struct {
	ViewState
	svc   *commands.Services
	group domain.DuplicateGroup
	form  *InputForm
}

// NewLinkModel creates a new link form
func NewLinkModel(svc *commands.Services) *LinkModel {
	return &LinkModel{
		svc: svc,
		form: NewInputForm(
			IDField("Document ID", "e.g. 128"),
			IDListField("Duplicate IDs", "comma-separated"),
			RoleVariantsField("Variants", "role=variant, e.g. hero=hero"),
		),
	}
}

type linkPrefillMsg struct {
	documentID int64
	variants   string
}

type linkDoneMsg struct {
	result *commands.LinkAndRegenerateResult
}

// SetGroup resets the form for a duplicate group
func (m *LinkModel) SetGroup(g domain.DuplicateGroup) {
	m.group = g
	m.ClearMessage()
	m.Busy = false
	m.form.Reset()
	m.form.SetValue(fieldDuplicates, RenderIDs(g.DuplicateIDs()))
}

// Init prefills the document and roles from the ledger
func (m *LinkModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.prefill)
}

// prefill picks the first document using a duplicate and suggests a variant
// of the primary for each role found there
func (m *LinkModel) prefill() tea.Msg {
	ctx := context.Background()
	for _, id := range m.group.DuplicateIDs() {
		entry, err := commands.NewGetUsageLedgerEntryCommand(m.svc, id).Execute(ctx)
		if err != nil || len(entry.Entry) == 0 {
			continue
		}
		docID := entry.Entry.DocumentIDs()[0]

		roles := make(map[domain.Role]bool)
		for _, u := range entry.Entry[docID] {
			roles[u.Role] = true
		}
		var pairs []string
		for role := range roles {
			s, err := commands.NewSuggestVariantCommand(m.svc, m.group.PrimaryID, role).Execute(ctx)
			if err != nil || !s.Found {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s=%s", role, s.Variant))
		}
		sort.Strings(pairs)
		return linkPrefillMsg{documentID: docID, variants: strings.Join(pairs, ",")}
	}
	return nil
}

// submit checks the form and returns the link run, or nil when a field is invalid
func (m *LinkModel) submit() tea.Cmd {
	if err := m.form.Validate(); err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	docID, _ := strconv.ParseInt(m.form.Value(fieldDocument), 10, 64)
	dups, _ := application.ParseIDList("ids", m.form.Value(fieldDuplicates))
	variants, _ := application.ParseRoleVariants(m.form.Value(fieldVariants))
	primaryID := m.group.PrimaryID

	return func() tea.Msg {
		result, err := commands.NewLinkAndRegenerateCommand(m.svc, primaryID, dups, variants, docID).Execute(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return linkDoneMsg{result: result}
	}
}

// Update handles messages for the link form
func (m *LinkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case linkPrefillMsg:
		if m.form.Value(fieldDocument) == "" {
			m.form.SetValue(fieldDocument, strconv.FormatInt(msg.documentID, 10))
		}
		if m.form.Value(fieldVariants) == "" {
			m.form.SetValue(fieldVariants, msg.variants)
		}
		return m, nil

	case linkDoneMsg:
		m.Busy = false
		r := msg.result
		if len(r.Ghosts) > 0 {
			docID, _ := strconv.ParseInt(m.form.Value(fieldDocument), 10, 64)
			return m, switchTo(SwitchToGhostsMsg{DocumentID: docID, Ghosts: r.Ghosts})
		}
		m.SetMessage(r.Message, len(r.Failures) > 0 || len(r.Verification) > 0)
		return m, nil

	case ErrMsg:
		m.Busy = false
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, switchTo(SwitchToDuplicatesMsg{})
		case key.Matches(msg, m.form.Keys.Submit):
			cmd := m.submit()
			if cmd == nil {
				return m, nil
			}
			m.Busy = true
			m.SetMessage("Linking...", false)
			return m, cmd
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

// View renders the link form
func (m *LinkModel) View() string {
	v := NewViewBuilder().Title("Link duplicates")

	v.Line(RenderLabelValue("Base key", styles.BaseKey.Render(m.group.BaseKey)))
	v.Line(RenderLabelValue("Primary", styles.PrimaryAsset.Render(fmt.Sprintf("#%d", m.group.PrimaryID))))
	for _, d := range m.group.Duplicates {
		v.Muted(fmt.Sprintf("  %d  %s  %s", d.ID, d.Source, d.File))
	}
	v.BlankLine()

	for i := range m.form.Fields {
		v.Line(m.form.RenderField(i))
	}
	v.BlankLine().Message(m.Message, m.MessageErr)

	return v.Raw(m.form.RenderHelp("link and regenerate")).String()
}
