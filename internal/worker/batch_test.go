package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/infofact/internal/model"
)

type mockAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (m *mockAnalyzer) Run(ctx context.Context, article string, names []string) (*model.Analysis, error) {
	m.mu.Lock()
	m.calls = append(m.calls, article)
	m.mu.Unlock()

	if article == m.fail {
		return nil, errors.New("analysis failed")
	}
	return &model.Analysis{
		Article: article,
		Reports: []*model.Report{{Agent: strings.Join(names, ","), Summary: "ok"}},
	}, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("article "+name), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	analyzer := &mockAnalyzer{fail: "article b.txt"}
	bp := NewBatchProcessor(analyzer, nil, []string{"sentiment_analysis_agent"}, 2)

	results := bp.Process(context.Background(), paths)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Source != paths[i] {
			t.Errorf("result %d source = %s, want %s", i, r.Source, paths[i])
		}
	}

	if results[0].Error != nil || results[0].Analysis.Article != "article a.txt" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Analysis.Reports[0].Agent != "sentiment_analysis_agent" {
		t.Errorf("agent selection not forwarded: %+v", results[0].Analysis.Reports[0])
	}
	if results[1].Error == nil {
		t.Error("expected analyzer error for b.txt")
	}
	if results[3].Error == nil || !strings.Contains(results[3].Error.Error(), "load") {
		t.Errorf("expected load error for missing file, got %v", results[3].Error)
	}
	if len(analyzer.calls) != 3 {
		t.Errorf("expected 3 analyzer calls, got %d", len(analyzer.calls))
	}
}

func TestBatchProcessor_CustomLoader(t *testing.T) {
	load := func(ctx context.Context, source string) (string, error) {
		return "fetched " + source, nil
	}
	bp := NewBatchProcessor(&mockAnalyzer{}, load, nil, 1)

	results := bp.Process(context.Background(), []string{"https://example.com/story"})
	if results[0].Analysis.Article != "fetched https://example.com/story" {
		t.Errorf("unexpected article: %q", results[0].Analysis.Article)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	bp := NewBatchProcessor(&mockAnalyzer{}, nil, nil, 2)
	if results := bp.Process(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	content := "# articles\narticles/one.txt\n\nhttps://example.com/story\narticles/one.txt\n  articles/two.txt  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}
	want := []string{"articles/one.txt", "https://example.com/story", "articles/two.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ReadSourcesFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
