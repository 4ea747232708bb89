package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/infofact/internal/model"
)

// Analyzer runs the selected agents over one article
type Analyzer interface {
	Run(ctx context.Context, article string, names []string) (*model.Analysis, error)
}

// Loader turns a source (file path, URL, ...) into article text
type Loader func(ctx context.Context, source string) (string, error)

// BatchResult is the outcome for one source
type BatchResult struct {
	Source   string
	Analysis *model.Analysis
	Error    error
}

// BatchProcessor analyzes many articles concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	load        Loader
	agents      []string
	concurrency int
}

// NewBatchProcessor creates a batch processor. A nil loader reads files.
func NewBatchProcessor(analyzer Analyzer, load Loader, agents []string, concurrency int) *BatchProcessor {
	if load == nil {
		load = LoadFile
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		load:        load,
		agents:      agents,
		concurrency: concurrency,
	}
}

// Process analyzes every source; results are in input order
func (b *BatchProcessor) Process(ctx context.Context, sources []string) []*BatchResult {
	if len(sources) == 0 {
		return []*BatchResult{}
	}

	return Map(ctx, b.concurrency, len(sources), func(ctx context.Context, i int) *BatchResult {
		res := &BatchResult{Source: sources[i]}

		article, err := b.load(ctx, sources[i])
		if err != nil {
			res.Error = fmt.Errorf("load %s: %w", sources[i], err)
			return res
		}

		res.Analysis, res.Error = b.analyzer.Run(ctx, article, b.agents)
		return res
	})
}

// LoadFile reads an article from disk
func LoadFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadSourcesFromFile reads one source per line, skipping blank lines,
// comments and duplicates
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
