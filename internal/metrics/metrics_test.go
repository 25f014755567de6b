package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordScan(t *testing.T) {
	completed := testutil.ToFloat64(ScansTotal.WithLabelValues("completed"))
	aborted := testutil.ToFloat64(ScansTotal.WithLabelValues("aborted"))

	RecordScan(false, 2*time.Second, 3, 7)
	if got := testutil.ToFloat64(ScansTotal.WithLabelValues("completed")); got != completed+1 {
		t.Errorf("completed scans = %v, want %v", got, completed+1)
	}
	if got := testutil.ToFloat64(DuplicateGroups); got != 3 {
		t.Errorf("duplicate groups = %v, want 3", got)
	}
	if got := testutil.ToFloat64(OrphanFiles); got != 7 {
		t.Errorf("orphan files = %v, want 7", got)
	}

	RecordScan(true, time.Second, 99, 99)
	if got := testutil.ToFloat64(ScansTotal.WithLabelValues("aborted")); got != aborted+1 {
		t.Errorf("aborted scans = %v, want %v", got, aborted+1)
	}
	if got := testutil.ToFloat64(DuplicateGroups); got != 3 {
		t.Errorf("aborted scan must not move gauges, got %v", got)
	}
}

func TestRecordDocument(t *testing.T) {
	docs := testutil.ToFloat64(DocumentsScanned)
	uses := testutil.ToFloat64(UsagesRecorded)

	RecordDocument(4)

	if got := testutil.ToFloat64(DocumentsScanned); got != docs+1 {
		t.Errorf("documents = %v, want %v", got, docs+1)
	}
	if got := testutil.ToFloat64(UsagesRecorded); got != uses+4 {
		t.Errorf("usages = %v, want %v", got, uses+4)
	}
}

func TestRecordRegenerationAndGhosts(t *testing.T) {
	gen := testutil.ToFloat64(VariantsGenerated)
	stale := testutil.ToFloat64(FilesDeleted.WithLabelValues("stale_variant"))
	ghosts := testutil.ToFloat64(GhostsDeleted)

	RecordRegeneration(2, 1, 3)
	RecordGhostDeletion(2)

	if got := testutil.ToFloat64(VariantsGenerated); got != gen+2 {
		t.Errorf("generated = %v, want %v", got, gen+2)
	}
	if got := testutil.ToFloat64(FilesDeleted.WithLabelValues("stale_variant")); got != stale+3 {
		t.Errorf("stale deletions = %v, want %v", got, stale+3)
	}
	if got := testutil.ToFloat64(GhostsDeleted); got != ghosts+2 {
		t.Errorf("ghosts = %v, want %v", got, ghosts+2)
	}
}
