package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/domain"
)

func TestRenderBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{n: 0, want: "0 B"},
		{n: 1023, want: "1023 B"},
		{n: 1536, want: "1.5 KiB"},
		{n: 5 * 1024 * 1024, want: "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := RenderBytes(tt.n); got != tt.want {
			t.Errorf("RenderBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPaginator(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(7)

	if p.TotalPages() != 3 {
		t.Errorf("expected 3 pages, got %d", p.TotalPages())
	}
	for i := 0; i < 4; i++ {
		p.CursorDown()
	}
	if p.Cursor() != 4 || p.CurrentPage() != 2 {
		t.Errorf("cursor %d page %d, want 4 and 2", p.Cursor(), p.CurrentPage())
	}
	if start, end := p.VisibleRange(); start != 3 || end != 6 {
		t.Errorf("visible range %d-%d, want 3-6", start, end)
	}

	p.NextPage()
	if start, end := p.VisibleRange(); start != 6 || end != 7 {
		t.Errorf("last page range %d-%d, want 6-7", start, end)
	}
	if p.NextPage() {
		t.Error("NextPage past the end should fail")
	}

	p.SetPageSize(10)
	if p.TotalPages() != 1 || p.CurrentPage() != 1 {
		t.Errorf("after resize: %d pages, page %d", p.TotalPages(), p.CurrentPage())
	}
}

func TestDuplicatesModel_SelectOpensLink(t *testing.T) {
	m := NewDuplicatesModel(nil)
	groups := []domain.DuplicateGroup{
		{BaseKey: "beach", PrimaryID: 5, Duplicates: []domain.DuplicateDescriptor{{ID: 99, Source: domain.SourceMissingInDatabase}}},
		{BaseKey: "harbor", PrimaryID: 7, Duplicates: []domain.DuplicateDescriptor{{ID: 12, Source: domain.SourceDuplicate}}},
	}
	m.Update(duplicatesLoadedMsg{groups: groups})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SwitchToLinkMsg)
	if !ok {
		t.Fatalf("expected SwitchToLinkMsg, got %T", cmd())
	}
	if msg.Group.BaseKey != "harbor" {
		t.Errorf("selected %q, want harbor", msg.Group.BaseKey)
	}

	view := m.View()
	if !strings.Contains(view, "beach") || !strings.Contains(view, "harbor") {
		t.Errorf("view should list both groups:\n%s", view)
	}
}

func TestGhostsModel_CancelReturnsToDuplicates(t *testing.T) {
	m := NewGhostsModel(nil)
	m.SetGhosts(2, []int64{12, 31})

	if view := m.View(); !strings.Contains(view, "#12") || !strings.Contains(view, "#31") {
		t.Errorf("view should list the ghosts:\n%s", view)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(SwitchToDuplicatesMsg); !ok {
		t.Error("cancel should return to the duplicates list")
	}
}

type fakeViewer struct {
	opened []string
}

func (f *fakeViewer) OpenFile(file string) error {
	f.opened = append(f.opened, file)
	return nil
}

func TestOrphansModel_OpenSelected(t *testing.T) {
	viewer := &fakeViewer{}
	m := NewOrphansModel(nil, viewer)
	m.Update(orphansLoadedMsg{
		orphans: []domain.OrphanCandidate{
			{Path: "2023/old-banner.jpg", BaseKey: "old-banner", SizeBytes: 2048},
			{Path: "2023/unused.png", BaseKey: "unused", SizeBytes: 512},
		},
		total: 2560,
	})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})

	if len(viewer.opened) != 1 || viewer.opened[0] != "2023/unused.png" {
		t.Errorf("opened %v, want [2023/unused.png]", viewer.opened)
	}
	if view := m.View(); !strings.Contains(view, "2.5 KiB") {
		t.Errorf("view should show the total size:\n%s", view)
	}
}

func TestInputForm_Validate(t *testing.T) {
	form := NewInputForm(
		IDField("Document ID", ""),
		IDListField("Duplicate IDs", ""),
		RoleVariantsField("Variants", ""),
	)

	tests := []struct {
		name      string
		values    [3]string
		wantErr   bool
		wantFocus int
		invalid   []int
	}{
		{name: "valid", values: [3]string{"128", "12, 31", "hero=hero,carousel=carousel-photo"}},
		{name: "all invalid", values: [3]string{"abc", "12,x", "hero"}, wantErr: true, wantFocus: 0, invalid: []int{0, 1, 2}},
		{name: "negative document", values: [3]string{"-4", "12", "hero=hero"}, wantErr: true, wantFocus: 0, invalid: []int{0}},
		{name: "empty id list", values: [3]string{"128", " , ", "hero=hero"}, wantErr: true, wantFocus: 1, invalid: []int{1}},
		{name: "no variant pairs", values: [3]string{"128", "12", ""}, wantErr: true, wantFocus: 2, invalid: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form.Reset()
			for i, v := range tt.values {
				form.SetValue(i, v)
			}
			err := form.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if form.FocusedField != tt.wantFocus {
				t.Errorf("focused field %d, want %d", form.FocusedField, tt.wantFocus)
			}
			bad := map[int]bool{}
			for _, i := range tt.invalid {
				bad[i] = true
			}
			for i, f := range form.Fields {
				if (f.Err != nil) != bad[i] {
					t.Errorf("field %q error = %v, want invalid %v", f.Label, f.Err, bad[i])
				}
			}
			if !strings.Contains(form.RenderField(tt.wantFocus), form.Fields[tt.wantFocus].Err.Error()) {
				t.Error("rendered field should show its error")
			}
		})
	}
}

func TestInputForm_FocusAndEditing(t *testing.T) {
	form := NewInputForm(IDField("Document ID", ""), IDListField("Duplicate IDs", ""))

	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if form.FocusedField != 1 {
		t.Errorf("shift+tab from the first field should wrap to 1, got %d", form.FocusedField)
	}
	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	if form.FocusedField != 0 {
		t.Errorf("tab from the last field should wrap to 0, got %d", form.FocusedField)
	}

	if err := form.Validate(); err == nil {
		t.Fatal("empty form should not validate")
	}
	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if form.Value(0) != "7" {
		t.Errorf("typed value = %q, want 7", form.Value(0))
	}
	if form.Fields[0].Err != nil {
		t.Error("editing a field should clear its error")
	}
	if form.Fields[1].Err == nil {
		t.Error("other fields keep their errors until edited")
	}
}

func TestLinkModel_SubmitRejectsInvalidFields(t *testing.T) {
	m := NewLinkModel(nil)
	m.SetGroup(domain.DuplicateGroup{BaseKey: "beach", PrimaryID: 5, Duplicates: []domain.DuplicateDescriptor{{ID: 99}}})
	m.form.SetValue(fieldDocument, "128")

	if got := m.form.Value(fieldDuplicates); got != "99" {
		t.Errorf("duplicates should be prefilled from the group, got %q", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("an invalid form should not start a link run")
	}
	if m.Busy {
		t.Error("model should not be busy after a rejected submit")
	}
	if !m.MessageErr || !strings.Contains(m.Message, "Variants") {
		t.Errorf("expected a variants error, got %q", m.Message)
	}
	if m.form.FocusedField != fieldVariants {
		t.Errorf("focus should move to the variants field, got %d", m.form.FocusedField)
	}
}
