package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/render"
	"github.com/ppiankov/infofact/internal/worker"
)

// isolate points config lookups at an empty home and resets viper
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, env := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "FACTCHECK_API_KEY", "GOOGLE_FACTCHECK_API_KEY", "OLLAMA_BASE_URL"} {
		t.Setenv(env, "")
	}
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestResolveCredentials(t *testing.T) {
	isolate(t)

	cfg := model.DefaultConfig()
	err := resolveCredentials(cfg)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing OPENAI_API_KEY error, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg = model.DefaultConfig()
	err = resolveCredentials(cfg)
	if err == nil || !strings.Contains(err.Error(), "FACTCHECK_API_KEY") {
		t.Fatalf("expected missing FACTCHECK_API_KEY error, got %v", err)
	}

	t.Setenv("GOOGLE_FACTCHECK_API_KEY", "fc-test")
	cfg = model.DefaultConfig()
	if err := resolveCredentials(cfg); err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.FactCheck.APIKey != "fc-test" {
		t.Errorf("keys not resolved: llm=%q factcheck=%q", cfg.LLM.APIKey, cfg.FactCheck.APIKey)
	}
}

func TestResolveCredentials_Ollama(t *testing.T) {
	isolate(t)
	t.Setenv("FACTCHECK_API_KEY", "fc-test")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.local:11434")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	if err := resolveCredentials(cfg); err != nil {
		t.Fatalf("ollama needs no LLM key: %v", err)
	}
	if cfg.LLM.BaseURL != "http://ollama.local:11434" {
		t.Errorf("base URL = %q", cfg.LLM.BaseURL)
	}
}

func TestBuildManager(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FACTCHECK_API_KEY", "fc-test")

	cfg := model.DefaultConfig()
	cfg.Dispatch.Parallel = true
	mgr, err := buildManager(cfg)
	if err != nil {
		t.Fatalf("buildManager: %v", err)
	}

	got := make([]string, 0, 3)
	for _, a := range mgr.List() {
		got = append(got, a.Name)
	}
	want := "factual_consistency_agent,metadata_agent,sentiment_analysis_agent"
	if strings.Join(got, ",") != want {
		t.Errorf("agents = %v, want %s", got, want)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("INFOFACT_LLM_MODEL", "gpt-4o")
	t.Setenv("INFOFACT_SCORING_FALSE_PENALTY", "20")
	t.Setenv("INFOFACT_HTTP_TIMEOUT", "45s")

	initConfig()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("llm.model = %q", cfg.LLM.Model)
	}
	if cfg.Scoring.FalsePenalty != 20 {
		t.Errorf("scoring.false_penalty = %d", cfg.Scoring.FalsePenalty)
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("http.timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Server.Address != ":5000" {
		t.Errorf("server.address default lost: %q", cfg.Server.Address)
	}
}

func TestLoadConfig_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "llm:\n  provider: anthropic\n  model: claude-3-5-haiku-latest\ndispatch:\n  parallel: true\n  workers: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	initConfig()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-3-5-haiku-latest" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if !cfg.Dispatch.Parallel || cfg.Dispatch.Workers != 2 {
		t.Errorf("dispatch = %+v", cfg.Dispatch)
	}
	if cfg.FactCheck.PageSize != 5 {
		t.Errorf("factcheck default lost: %+v", cfg.FactCheck)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "FACTCHECK_API_KEY") {
		t.Error("expected credential hints in config file")
	}
	if strings.Contains(string(data), "api_key") {
		t.Error("api keys must not be written to disk")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	def := model.DefaultConfig()
	if cfg.Server.Address != def.Server.Address || cfg.Scoring != def.Scoring || cfg.Cache.MemoryTTL != def.Cache.MemoryTTL {
		t.Errorf("round trip mismatch: %+v", cfg)
	}
}

func TestSourceLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><head><title>Story</title></head><body><p>Body text.</p></body></html>")
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = false
	cfg.HTTP.Readability = false
	load := sourceLoader(newFetcher(cfg))

	got, err := load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("load URL: %v", err)
	}
	if got != "Story\n\nBody text." {
		t.Errorf("article = %q", got)
	}

	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("local article"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = load(context.Background(), path)
	if err != nil || got != "local article" {
		t.Errorf("load file = %q, %v", got, err)
	}
}

func TestAgentsCommand(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"agents"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("agents: %v", err)
	}
	text := out.String()
	if !strings.HasPrefix(text, "Available agents:\n") {
		t.Errorf("unexpected output:\n%s", text)
	}
	for _, name := range []string{"factual_consistency_agent", "metadata_agent", "sentiment_analysis_agent"} {
		if !strings.Contains(text, name+" - ") {
			t.Errorf("missing %s in:\n%s", name, text)
		}
	}
}

func TestConfigCheckCommand(t *testing.T) {
	isolate(t)
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, `{"models": []}`)
	}))
	defer ollama.Close()

	t.Setenv("INFOFACT_LLM_PROVIDER", "ollama")
	t.Setenv("INFOFACT_LLM_MODEL", "llama3.1")
	t.Setenv("OLLAMA_BASE_URL", ollama.URL)
	t.Setenv("FACTCHECK_API_KEY", "fc-test")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "check"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config check: %v", err)
	}
	if got := out.String(); got != "✓ ollama reachable (model llama3.1)\n" {
		t.Errorf("output = %q", got)
	}
}

func TestReportWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	var log bytes.Buffer
	rw := reportWriter{dir: dir, renderer: render.NewRenderer(false), log: &log}

	analysis := &model.Analysis{
		Article: "text",
		Reports: []*model.Report{{Agent: "metadata_agent", Summary: "No URLs or named people found."}},
	}
	sources := []string{"https://example.com/story.html", "missing.txt", "late.txt"}
	results := []*worker.BatchResult{
		{Source: sources[0], Analysis: analysis},
		{Source: sources[1], Error: os.ErrNotExist},
		nil,
	}

	ok, failed := rw.writeAll(sources, results, context.DeadlineExceeded)
	if ok != 1 || failed != 2 {
		t.Fatalf("ok=%d failed=%d, want 1 and 2", ok, failed)
	}

	for _, name := range []string{"001-example.com-story.json", "001-example.com-story.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing report %s: %v", name, err)
		}
	}
	if !strings.Contains(log.String(), "late.txt: not processed: context deadline exceeded") {
		t.Errorf("log = %q", log.String())
	}
}

func TestFactCheckConfig_InheritsHTTPProxy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.HTTP.HTTPSProxy = "http://proxy.internal:3128"
	cfg.HTTP.NoProxy = "localhost"
	cfg.FactCheck.NoProxy = "example.org"

	fc := factCheckConfig(cfg)
	if fc.HTTPSProxy != "http://proxy.internal:3128" {
		t.Errorf("https_proxy = %q, want the http section value", fc.HTTPSProxy)
	}
	if fc.NoProxy != "example.org" {
		t.Errorf("no_proxy = %q, want the factcheck override", fc.NoProxy)
	}
	if cfg.FactCheck.HTTPSProxy != "" {
		t.Error("factCheckConfig must not modify cfg")
	}
}
