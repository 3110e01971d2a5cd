package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrank/internal/config"
	"docrank/internal/domain"
	"docrank/internal/history"
	"docrank/internal/report"
)

var fixedNow = time.Date(2025, 7, 10, 15, 31, 22, 632389000, time.Local)

type memoryRecorder struct {
	mu   sync.Mutex
	runs []history.Run
}

func (r *memoryRecorder) Record(_ context.Context, run history.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// stubExtractor serves pages by file base name and panics for names
// listed in panics.
type stubExtractor struct {
	pages  map[string][]domain.PageText
	panics map[string]bool
}

func (e stubExtractor) Pages(_ context.Context, path string) ([]domain.PageText, error) {
	name := filepath.Base(path)
	if e.panics[name] {
		panic("corrupt file")
	}
	if p, ok := e.pages[name]; ok {
		return p, nil
	}
	return nil, errors.New("unreadable")
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "run-1" }),
	}
	return New(config.Default(), append(base, opts...)...)
}

type docFile struct {
	name, title, content string
}

func writeCollection(t *testing.T, dir string, persona, job string, docs []docFile) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "PDFs"), 0o755))
	in := report.Input{
		ChallengeInfo: report.ChallengeInfo{ChallengeID: "round_1b_001", TestCaseName: "menu"},
		Persona:       report.Persona{Role: persona},
		JobToBeDone:   report.Job{Task: job},
	}
	for _, d := range docs {
		in.Documents = append(in.Documents, report.DocumentRef{Filename: d.name, Title: d.title})
		if d.content != "" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "PDFs", d.name), []byte(d.content), 0o644))
		}
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "challenge1b_input.json"), data, 0o644))
}

func menuDocs() []docFile {
	return []docFile{
		{"Breakfast Ideas.txt", "Breakfast Ideas", "Scrambled Eggs\nQuick and easy breakfast."},
		{"Missing.txt", "Missing", ""},
		{"Dinner Party Menu.txt", "Dinner Party Menu", "Grilled Salmon with Vegetables\nA vegetarian-friendly dinner option."},
	}
}

func TestProcessCollection_Enhanced(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Collection 1")
	writeCollection(t, dir, "Food Contractor", "Prepare a vegetarian dinner menu", menuDocs())
	rec := &memoryRecorder{}

	res, err := newService(t, WithRecorder(rec)).ProcessCollection(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, report.ModeEnhanced, res.Mode)
	assert.Equal(t, 2, res.Sections)
	assert.Equal(t, "Collection 1", res.Name)

	out, err := report.ReadOutput(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast Ideas.txt", "Dinner Party Menu.txt"}, out.Metadata.InputDocuments)
	assert.Equal(t, "run-1", out.Metadata.RunID)
	assert.Equal(t, "2025-07-10T15:31:22.632389", out.Metadata.ProcessingTimestamp)
	assert.Equal(t, 2, out.Metadata.TotalSectionsAnalyzed)

	require.Len(t, out.ExtractedSections, 2)
	top := out.ExtractedSections[0]
	assert.Equal(t, "Dinner Party Menu.txt", top.Document)
	assert.Equal(t, "Grilled Salmon with Vegetables", top.SectionTitle)
	assert.Equal(t, 1, top.ImportanceRank)
	assert.Equal(t, 1, top.PageNumber)
	assert.Equal(t, 2, out.ExtractedSections[1].ImportanceRank)

	require.Len(t, out.SubsectionAnalysis, 2)
	assert.Contains(t, out.SubsectionAnalysis[0].RefinedText, "vegetarian-friendly")
	assert.NoError(t, report.ValidateOutput(out))

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "run-1", rec.runs[0].ID)
	assert.Equal(t, "Collection 1", rec.runs[0].Collection)
	assert.Equal(t, report.ModeEnhanced, rec.runs[0].Mode)
}

func TestProcessCollection_FallsBackToSimpleMode(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "Food Contractor", "Prepare a vegetarian dinner menu", []docFile{
		{"a.txt", "Doc A", ""},
		{"b.txt", "Doc B", ""},
	})

	res, err := newService(t).ProcessCollection(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, report.ModeSimple, res.Mode)

	out, err := report.ReadOutput(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, out.Metadata.InputDocuments)
	assert.Equal(t, report.ModeSimple, out.Metadata.Mode)
	assert.Empty(t, out.ExtractedSections)
	assert.NoError(t, report.ValidateOutput(out))
}

func TestProcessCollection_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "challenge1b_input.json"), []byte(`{"documents": []}`), 0o644))

	_, err := newService(t).ProcessCollection(context.Background(), dir)
	assert.ErrorIs(t, err, report.ErrInvalidInput)
	assert.NoFileExists(t, filepath.Join(dir, "challenge1b_output.json"))
}

func TestSimple_FirstPagesVerbatim(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("é", 400)
	pages := []string{long, "page two", "page three", "page four"}
	writeCollection(t, dir, "Travel Planner", "Plan a trip", []docFile{
		{"guide.txt", "Guide Title", strings.Join(pages, "\f")},
		{"gone.txt", "Gone", ""},
	})
	in, err := report.ReadInput(filepath.Join(dir, "challenge1b_input.json"))
	require.NoError(t, err)

	out := newService(t).simple(context.Background(), dir, in)
	require.Len(t, out.ExtractedSections, 3)
	for i, s := range out.ExtractedSections {
		assert.Equal(t, "guide.txt", s.Document)
		assert.Equal(t, "Guide Title", s.SectionTitle)
		assert.Equal(t, i+1, s.ImportanceRank)
		assert.Equal(t, i+1, s.PageNumber)
	}
	assert.Equal(t, strings.Repeat("é", 300), out.SubsectionAnalysis[0].RefinedText)
	assert.Equal(t, "page two", out.SubsectionAnalysis[1].RefinedText)
	assert.Equal(t, 3, out.Metadata.TotalSectionsAnalyzed)
	assert.Equal(t, []string{"guide.txt", "gone.txt"}, out.Metadata.InputDocuments)
}

func TestExtract_IsolatesFailuresAndKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	ext := stubExtractor{
		pages:  map[string][]domain.PageText{},
		panics: map[string]bool{"bad.pdf": true},
	}
	readable := map[string]bool{"a.pdf": true, "b.pdf": true, "c.pdf": true, "d.pdf": true}
	var sources []Source
	for _, name := range []string{"a.pdf", "bad.pdf", "b.pdf", "unreadable.pdf", "c.pdf", "d.pdf", "missing.pdf"} {
		path := filepath.Join(dir, name)
		if name != "missing.pdf" {
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		}
		if readable[name] {
			ext.pages[name] = []domain.PageText{{PageNumber: 1, Text: "Text of " + name}}
		}
		sources = append(sources, Source{ID: name, Path: path})
	}
	cfg := config.Default()
	cfg.Extraction.Workers = 2
	s := New(cfg, WithExtractor(ext), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	docs, err := s.Extract(context.Background(), sources)
	require.NoError(t, err)
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, ids)
}

func TestExtract_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(t).Extract(ctx, []Source{{ID: "a.txt", Path: path}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank_NoSections(t *testing.T) {
	_, err := newService(t).Rank(context.Background(), nil, domain.ScoringContext{})
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestRank_ExcerptsParallelSections(t *testing.T) {
	docs := []domain.Document{
		{ID: "one.pdf", Pages: []domain.PageText{{PageNumber: 1, Text: "Coastal Adventures\nBeaches near Nice."}, {PageNumber: 2, Text: "plain text only."}}},
		{ID: "empty.pdf"},
		{ID: "two.pdf", Pages: []domain.PageText{{PageNumber: 4, Text: "Nightlife and Bars\nBars for a group trip."}}},
	}
	res, err := newService(t).Rank(context.Background(), docs, domain.ScoringContext{PersonaRole: "Travel Planner", JobTask: "Plan a trip"})
	require.NoError(t, err)

	assert.Equal(t, []string{"one.pdf", "two.pdf"}, res.Documents)
	require.Len(t, res.Sections, 3)
	require.Len(t, res.Excerpts, 3)
	for i, s := range res.Sections {
		assert.Equal(t, i+1, s.ImportanceRank)
		assert.Equal(t, s.DocumentID, res.Excerpts[i].DocumentID)
		assert.Equal(t, s.PageNumber, res.Excerpts[i].PageNumber)
	}
}

func TestRankFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, d := range menuDocs() {
		if d.content == "" {
			continue
		}
		p := filepath.Join(dir, d.name)
		require.NoError(t, os.WriteFile(p, []byte(d.content), 0o644))
		paths = append(paths, p)
	}

	out, res, err := newService(t).RankFiles(context.Background(), paths,
		domain.ScoringContext{PersonaRole: "Food Contractor", JobTask: "Prepare a vegetarian dinner menu"})
	require.NoError(t, err)
	assert.Len(t, res.Sections, 2)
	assert.Equal(t, "Dinner Party Menu.txt", out.ExtractedSections[0].Document)
	assert.Equal(t, report.ModeEnhanced, out.Metadata.Mode)
	assert.Equal(t, "run-1", out.Metadata.RunID)
}

func TestProcessAll(t *testing.T) {
	root := t.TempDir()
	writeCollection(t, filepath.Join(root, "Collection 1"), "Food Contractor", "Prepare a vegetarian dinner menu", menuDocs())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Collection 2"), 0o755))
	bad := filepath.Join(root, "Collection 3")
	require.NoError(t, os.MkdirAll(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "challenge1b_input.json"), []byte("{broken"), 0o644))

	results, err := newService(t).ProcessAll(context.Background(), root, []string{"Collection 1", "Collection 2", "Collection 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Collection 3")
	assert.ErrorIs(t, err, report.ErrInvalidInput)

	require.Len(t, results, 1)
	assert.Equal(t, "Collection 1", results[0].Name)
	assert.FileExists(t, filepath.Join(root, "Collection 1", "challenge1b_output.json"))
	assert.NoFileExists(t, filepath.Join(root, "Collection 2", "challenge1b_output.json"))
}
