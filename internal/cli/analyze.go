package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/infofact/internal/dispatch"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/render"
)

var (
	analyzeAgents  string
	analyzeURL     string
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
	noFooter       bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze one article with the selected agents",
	Long: `Analyze runs a single article through the selected agents and prints
the combined report.

The article is read from a file, from stdin ("-" or no argument), or fetched
from a web page with --url.

Example:
  infofact analyze article.txt --agents factual_consistency_agent,metadata_agent
  cat article.txt | infofact analyze - --agents sentiment_analysis_agent
  infofact analyze --url https://example.com/story --agents metadata_agent --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeAgents, "agents", "a", "", "comma-separated agents to run (see 'infofact agents')")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "fetch the article from this URL")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	names := dispatch.ParseSelection(analyzeAgents)
	if len(names) == 0 {
		return errors.New("no agents selected: pass --agents (see 'infofact agents')")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	article, err := readArticle(ctx, cmd, cfg, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(article) == "" {
		return errors.New("article is empty")
	}

	mgr, err := buildManager(cfg, dispatch.WithLogger(newLogger("[DISPATCH] ", cfg.Output.Verbose)))
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Running %d agent(s) on %d characters...\n", len(names), len(article))
	}

	analysis, err := mgr.Run(ctx, article, names)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), analysis.Text())

	renderer := render.NewRenderer(!noFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(analysis, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(analysis, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}
	if cfg.Output.Verbose {
		fmt.Fprintln(os.Stderr)
		renderer.RenderSummary(os.Stderr, analysis)
	}

	return nil
}

// readArticle loads the article from --url, a file, or stdin
func readArticle(ctx context.Context, cmd *cobra.Command, cfg *model.Config, args []string) (string, error) {
	if analyzeURL != "" {
		if len(args) > 0 {
			return "", errors.New("pass either a file or --url, not both")
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching %s...\n", analyzeURL)
		}
		page, err := newFetcher(cfg).FetchWithRetry(ctx, analyzeURL)
		if err != nil {
			return "", fmt.Errorf("fetch: %w", err)
		}
		return page.Article(), nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}
	return string(data), nil
}
