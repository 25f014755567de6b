package mcp

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"mediasweep/internal/domain"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{name: "single", raw: "42", want: []int64{42}},
		{name: "list with spaces", raw: " 12, 31 ,", want: []int64{12, 31}},
		{name: "empty", raw: "", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "not a number", raw: "12,abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs("ids", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatGroup(t *testing.T) {
	g := domain.DuplicateGroup{
		BaseKey:   "beach",
		PrimaryID: 5,
		Duplicates: []domain.DuplicateDescriptor{
			{ID: 99, Source: domain.SourceMissingInDatabase, File: "/uploads/beach-1.jpg"},
		},
	}
	out := formatGroup(g)
	if !strings.HasPrefix(out, "beach  primary 5\n") {
		t.Errorf("unexpected header in %q", out)
	}
	if !strings.Contains(out, "99  missing_in_database  /uploads/beach-1.jpg") {
		t.Errorf("duplicate line missing in %q", out)
	}
}

func TestFormatSummary(t *testing.T) {
	s := domain.ScanSummary{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Documents: 3,
		Uses:      7,
		Aborted:   true,
	}
	out := formatSummary(s, 2, 4)
	for _, want := range []string{"run-1 (aborted)", "2026-10-01 09:30:00", "1.5s", "3 documents", "2 duplicate groups", "4 orphans"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q should contain %q", out, want)
		}
	}
}

func TestFormatUsage(t *testing.T) {
	got := formatUsage(domain.UsageRecord{AssetID: 99, DocumentID: 2, Role: domain.RoleHero, FileURL: "/u/a.jpg", Dangling: true})
	if got != "document 2  hero  -  /u/a.jpg  (dangling)" {
		t.Errorf("unexpected line %q", got)
	}
}
