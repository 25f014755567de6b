package commands

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

var testBoxes = []domain.VariantBox{
	{Name: "hero", Width: 1920, Height: 800, Crop: true},
	{Name: "carousel-photo", Width: 1200, Height: 675, Crop: true},
	{Name: "standard-page-photo", Width: 800, Height: 0},
	{Name: "teaser-photo", Width: 400, Height: 0},
}

// fakeDocuments is an in-memory ports.DocumentStore
type fakeDocuments struct {
	mu    sync.Mutex
	docs  map[int64][]byte
	saved []int64
	fail  map[int64]error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[int64][]byte), fail: make(map[int64]error)}
}

func (f *fakeDocuments) put(t *testing.T, id int64, tree string) {
	t.Helper()
	if _, err := domain.DecodeTree([]byte(tree)); err != nil {
		t.Fatalf("invalid tree for document %d: %v", id, err)
	}
	f.docs[id] = []byte(tree)
}

func (f *fakeDocuments) ListDocumentIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeDocuments) LoadDocument(ctx context.Context, id int64) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	data, ok := f.docs[id]
	if !ok {
		return nil, &application.NotFoundError{Kind: "document", ID: id}
	}
	tree, err := domain.DecodeTree(data)
	if err != nil {
		return nil, err
	}
	return &domain.Document{ID: id, Title: fmt.Sprintf("Document %d", id), Tree: tree}, nil
}

func (f *fakeDocuments) SaveDocument(ctx context.Context, doc *domain.Document) error {
	data, err := domain.EncodeTree(doc.Tree)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = data
	f.saved = append(f.saved, doc.ID)
	return nil
}

// fakeFiles is an in-memory ports.FileStore keyed by relative path
type fakeFiles struct {
	mu    sync.Mutex
	files map[string]int64
}

func newFakeFiles(paths ...string) *fakeFiles {
	f := &fakeFiles{files: make(map[string]int64)}
	for _, p := range paths {
		f.files[p] = 1000
	}
	return f
}

func (f *fakeFiles) add(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = 1000
}

func (f *fakeFiles) Exists(file string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[file]
	return ok
}

func (f *fakeFiles) Remove(file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, file)
	return nil
}

func (f *fakeFiles) Size(file string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[file], nil
}

func (f *fakeFiles) Derived(file string) ([]domain.DerivedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir := path.Dir(file)
	var out []domain.DerivedFile
	for p := range f.files {
		if path.Dir(p) != dir || !domain.IsDerivedOf(path.Base(p), file) {
			continue
		}
		w, h, _ := domain.ParseDimensions(path.Base(p))
		out = append(out, domain.DerivedFile{Path: p, Width: w, Height: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeFiles) WalkImages(ctx context.Context, fn func(string, int64) error) error {
	f.mu.Lock()
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	f.mu.Unlock()
	sort.Strings(paths)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !domain.HasImageExtension(p) {
			continue
		}
		if err := fn(p, f.files[p]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeFiles) URL(file string) string {
	return "/uploads/" + file
}

// fakeResizer writes a derived name into fakeFiles instead of an image
type fakeResizer struct {
	files *fakeFiles
	fail  map[string]error
	calls []string
}

func (r *fakeResizer) Resize(ctx context.Context, file string, box domain.VariantBox) (domain.VariantFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.VariantFile{}, err
	}
	r.calls = append(r.calls, box.Name)
	if err := r.fail[box.Name]; err != nil {
		return domain.VariantFile{}, err
	}

	w, h := box.Width, box.Height
	if h == 0 {
		h = w * 2 / 3
	}
	name := domain.DerivedFileName(file, w, h)
	if box.Name == domain.ScaledMasterName {
		name = domain.ScaledMasterFileName(file)
	}
	r.files.add(path.Join(path.Dir(file), name))
	return domain.VariantFile{File: name, Width: w, Height: h}, nil
}

// fakeMedia is an in-memory ports.MediaStore
type fakeMedia struct {
	mu     sync.Mutex
	assets map[int64]domain.MediaAsset
	meta   map[int64]map[string][]byte
	files  *fakeFiles
	nextID int64
}

func newFakeMedia(files *fakeFiles) *fakeMedia {
	return &fakeMedia{
		assets: make(map[int64]domain.MediaAsset),
		meta:   make(map[int64]map[string][]byte),
		files:  files,
		nextID: 1000,
	}
}

func (m *fakeMedia) put(t *testing.T, a domain.MediaAsset) {
	t.Helper()
	if _, err := m.CreateAsset(context.Background(), &a); err != nil {
		t.Fatal(err)
	}
}

func (m *fakeMedia) hydrate(a domain.MediaAsset) domain.MediaAsset {
	a.Variants = nil
	a.FileMissing = false
	meta := m.meta[a.ID]
	if data := meta[ports.MetaVariants]; len(data) > 0 {
		_ = json.Unmarshal(data, &a.Variants)
	}
	a.FileMissing = string(meta[ports.MetaFileMissing]) == "1"
	return a
}

func (m *fakeMedia) ListAssets(ctx context.Context) ([]domain.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MediaAsset, 0, len(m.assets))
	for _, a := range m.assets {
		out = append(out, m.hydrate(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *fakeMedia) GetAsset(ctx context.Context, id int64) (*domain.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, &application.NotFoundError{Kind: "asset", ID: id}
	}
	a = m.hydrate(a)
	return &a, nil
}

func (m *fakeMedia) CreateAsset(ctx context.Context, asset *domain.MediaAsset) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := asset.ID
	if id == 0 {
		m.nextID++
		id = m.nextID
	}
	if _, exists := m.assets[id]; exists {
		return 0, fmt.Errorf("asset %d already exists", id)
	}
	stored := *asset
	stored.ID = id
	m.assets[id] = stored
	m.meta[id] = make(map[string][]byte)
	if len(asset.Variants) > 0 {
		data, err := json.Marshal(asset.Variants)
		if err != nil {
			return 0, err
		}
		m.meta[id][ports.MetaVariants] = data
	}
	return id, nil
}

func (m *fakeMedia) DeleteAsset(ctx context.Context, id int64, purgeFile bool) error {
	m.mu.Lock()
	a, ok := m.assets[id]
	if !ok {
		m.mu.Unlock()
		return &application.NotFoundError{Kind: "asset", ID: id}
	}
	a = m.hydrate(a)
	delete(m.assets, id)
	delete(m.meta, id)
	m.mu.Unlock()

	if purgeFile && a.HasFile() {
		derived, _ := m.files.Derived(a.File)
		for _, d := range derived {
			_ = m.files.Remove(d.Path)
		}
		_ = m.files.Remove(a.File)
	}
	return nil
}

func (m *fakeMedia) GetMeta(ctx context.Context, id int64, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta[id][key], nil
}

func (m *fakeMedia) SetMeta(ctx context.Context, id int64, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[id]; !ok {
		return &application.NotFoundError{Kind: "asset", ID: id}
	}
	if value == nil {
		delete(m.meta[id], key)
		return nil
	}
	m.meta[id][key] = value
	return nil
}

// fakeLedger is an in-memory ports.UsageLedger
type fakeLedger struct {
	mu       sync.Mutex
	byDoc    map[int64][]domain.UsageRecord
	locks    map[domain.LockEntry]bool
	scan     *domain.CorpusScanResult
	replaced int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		byDoc: make(map[int64][]domain.UsageRecord),
		locks: make(map[domain.LockEntry]bool),
	}
}

func (l *fakeLedger) Record(ctx context.Context, documentID int64, records []domain.UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(records) == 0 {
		delete(l.byDoc, documentID)
		return nil
	}
	l.byDoc[documentID] = append([]domain.UsageRecord(nil), records...)
	return nil
}

func (l *fakeLedger) PruneDocuments(ctx context.Context, keep []int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	live := make(map[int64]bool, len(keep))
	for _, id := range keep {
		live[id] = true
	}
	stale := make(map[int64]bool)
	for doc := range l.byDoc {
		if !live[doc] {
			stale[doc] = true
			delete(l.byDoc, doc)
		}
	}
	for e := range l.locks {
		if !live[e.DocumentID] {
			stale[e.DocumentID] = true
			delete(l.locks, e)
		}
	}
	return len(stale), nil
}

func (l *fakeLedger) UsagesFor(ctx context.Context, assetID int64) (domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := make(domain.LedgerEntry)
	for doc, recs := range l.byDoc {
		for _, r := range recs {
			if r.AssetID == assetID {
				entry[doc] = append(entry[doc], r)
			}
		}
	}
	return entry, nil
}

func (l *fakeLedger) UsagesForDocument(ctx context.Context, assetID, documentID int64) ([]domain.UsageRecord, error) {
	entry, _ := l.UsagesFor(ctx, assetID)
	return entry[documentID], nil
}

func (l *fakeLedger) DocumentUsages(ctx context.Context, documentID int64) ([]domain.UsageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.UsageRecord(nil), l.byDoc[documentID]...), nil
}

func (l *fakeLedger) DanglingUsages(ctx context.Context) ([]domain.UsageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.UsageRecord
	for _, recs := range l.byDoc {
		for _, r := range recs {
			if r.Dangling {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (l *fakeLedger) AllBaseKeysUsed(ctx context.Context) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make(map[string]bool)
	for _, recs := range l.byDoc {
		for _, r := range recs {
			if k := domain.BaseKey(r.FileURL); k != "" {
				keys[k] = true
			}
		}
	}
	return keys, nil
}

func (l *fakeLedger) Locks(ctx context.Context, assetID int64) ([]domain.LockEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LockEntry
	for e := range l.locks {
		if e.AssetID == assetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLedger) Lock(ctx context.Context, entry domain.LockEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks[entry] = true
	return nil
}

func (l *fakeLedger) Unlock(ctx context.Context, entry domain.LockEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, entry)
	return nil
}

func (l *fakeLedger) ReplaceCorpusScan(ctx context.Context, result *domain.CorpusScanResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scan = result
	l.replaced++
	return nil
}

func (l *fakeLedger) LastCorpusScan(ctx context.Context) (*domain.CorpusScanResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scan, nil
}

// fixture wires the fakes into Services
type fixture struct {
	svc     *Services
	docs    *fakeDocuments
	media   *fakeMedia
	files   *fakeFiles
	resizer *fakeResizer
	ledger  *fakeLedger
}

func newFixture(files ...string) *fixture {
	fs := newFakeFiles(files...)
	f := &fixture{
		docs:    newFakeDocuments(),
		files:   fs,
		media:   newFakeMedia(fs),
		resizer: &fakeResizer{files: fs, fail: make(map[string]error)},
		ledger:  newFakeLedger(),
	}
	f.svc = &Services{
		Documents: f.docs,
		Media:     f.media,
		Files:     f.files,
		Resizer:   f.resizer,
		Ledger:    f.ledger,
		Boxes:     testBoxes,
	}
	return f
}

// heroSection builds a document tree with one hero background image
func heroSection(id int64, url string) string {
	return fmt.Sprintf(`[{"elType":"section","settings":{"_css_classes":"hero-section","background_image":{"id":%d,"url":%q}}}]`, id, url)
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
