package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/infofact/internal/dispatch"
	"github.com/ppiankov/infofact/internal/fetch"
	"github.com/ppiankov/infofact/internal/render"
	"github.com/ppiankov/infofact/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchAgents  string
	batchTimeout time.Duration
	// noFooter is defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many articles from a list in parallel",
	Long: `Batch reads one source per line (a local file path or an http(s) URL),
analyzes each with the selected agents, and writes a JSON and Markdown report
per source. Blank lines and lines starting with # are ignored.

Example:
  infofact batch sources.txt --agents factual_consistency_agent
  infofact batch sources.txt --agents metadata_agent,sentiment_analysis_agent --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchAgents, "agents", "a", "", "comma-separated agents to run")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of articles analyzed at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./infofact-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	names := dispatch.ParseSelection(batchAgents)
	if len(names) == 0 {
		return errors.New("no agents selected: pass --agents (see 'infofact agents')")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sources, err := worker.ReadSourcesFromFile(file)
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	banner(os.Stderr, "Infofact Batch Processing", [][2]string{
		{"Input file", fmt.Sprintf("%s (%d sources)", file, len(sources))},
		{"Agents", strings.Join(names, ", ")},
		{"Workers", fmt.Sprint(concurrency)},
		{"Output dir", outputDir},
		{"Timeout", batchTimeout.String()},
	})

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	mgr, err := buildManager(cfg, dispatch.WithLogger(newLogger("[DISPATCH] ", cfg.Output.Verbose)))
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(mgr, sourceLoader(newFetcher(cfg)), names, concurrency)
	results := processor.Process(ctx, sources)

	w := reportWriter{
		dir:      outputDir,
		renderer: render.NewRenderer(!noFooter),
		log:      os.Stderr,
		verbose:  cfg.Output.Verbose,
	}
	ok, failed := w.writeAll(sources, results, ctx.Err())

	banner(os.Stderr, "Batch Complete", [][2]string{
		{"Total", fmt.Sprintf("%d sources", len(results))},
		{"Success", fmt.Sprint(ok)},
		{"Failures", fmt.Sprint(failed)},
		{"Output", outputDir},
	})
	return nil
}

// reportWriter stores one JSON and one Markdown report per batch result
type reportWriter struct {
	dir      string
	renderer *render.Renderer
	log      io.Writer
	verbose  bool
}

// writeAll writes reports for every successful result and tallies the
// outcome. A nil result means the batch ran out of time before reaching it.
func (rw reportWriter) writeAll(sources []string, results []*worker.BatchResult, cause error) (ok, failed int) {
	for i, result := range results {
		var err error
		switch {
		case result == nil:
			err = fmt.Errorf("%s: not processed: %v", sources[i], cause)
		case result.Error != nil:
			err = fmt.Errorf("%s: %w", result.Source, result.Error)
		default:
			err = rw.write(i, result)
		}
		if err != nil {
			failed++
			fmt.Fprintf(rw.log, "✗ %v\n", err)
			continue
		}
		ok++
	}
	return ok, failed
}

func (rw reportWriter) write(i int, result *worker.BatchResult) error {
	base := filepath.Join(rw.dir, fmt.Sprintf("%03d-%s", i+1, render.Slug(result.Source)))
	if err := rw.renderer.RenderJSON(result.Analysis, base+".json"); err != nil {
		return fmt.Errorf("%s: write JSON: %w", result.Source, err)
	}
	if err := rw.renderer.RenderMarkdown(result.Analysis, base+".md"); err != nil {
		return fmt.Errorf("%s: write Markdown: %w", result.Source, err)
	}
	fmt.Fprintf(rw.log, "✓ %s -> %s.md\n", result.Source, base)
	if rw.verbose {
		rw.renderer.RenderSummary(rw.log, result.Analysis)
	}
	return nil
}

const rule = "═══════════════════════════════════════════════════════════"

// banner prints a boxed title followed by aligned key/value rows
func banner(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n\n", rule, title, rule)
	for _, row := range rows {
		fmt.Fprintf(w, "  %-12s %s\n", row[0]+":", row[1])
	}
	fmt.Fprintln(w)
}

// sourceLoader fetches http(s) sources and reads everything else from disk
func sourceLoader(f *fetch.Fetcher) worker.Loader {
	return func(ctx context.Context, source string) (string, error) {
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			page, err := f.FetchWithRetry(ctx, source)
			if err != nil {
				return "", err
			}
			return page.Article(), nil
		}
		return worker.LoadFile(ctx, source)
	}
}
