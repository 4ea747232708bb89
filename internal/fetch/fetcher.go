package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/util"
	"github.com/ppiankov/infofact/internal/worker"
)

const fetchMaxRetries = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned when robots.txt forbids fetching the page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher downloads a web page and reduces it to article text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker  // nil when robots.txt is not consulted
	hosts      *worker.Limiter // Paces hosts that ask for a crawl delay

	readability bool
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	client := util.NewHTTPClient(timeout, util.ProxyConfig{HTTPProxy: httpProxy, HTTPSProxy: httpsProxy, NoProxy: noProxy})
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		hosts:      worker.NewLimiter(0, 1),
	}
	if respectRobots {
		f.robots = NewRobotsChecker(userAgent, timeout)
		f.robots.httpClient.Transport = client.Transport
	}
	return f
}

// UseReadability switches HTML pages to main-content extraction.
// Pages readability cannot handle fall back to all visible text.
func (f *Fetcher) UseReadability(on bool) *Fetcher {
	f.readability = on
	return f
}

// Page is a fetched article
type Page struct {
	URL         string // Final URL after redirects
	StatusCode  int
	ContentType string
	Title       string
	Byline      string // Author line, readability only
	Text        string // Visible text, paragraphs separated by newlines
	HTML        string
}

// Article returns the text handed to the agents
func (p *Page) Article() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Byline, p.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// retryableError marks failures worth another attempt
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Fetch retrieves a page once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.robots != nil {
		decision, err := f.robots.Check(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		if u, err := url.Parse(rawURL); err == nil && decision.CrawlDelay > 0 {
			f.hosts.SetHostRate(u.Host, 1/decision.CrawlDelay.Seconds(), 1)
		}
	}
	if err := f.hosts.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{fmt.Errorf("fetch: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &retryableError{fmt.Errorf("unexpected status: %s", resp.Status)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	page := &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        string(body),
	}

	if strings.Contains(page.ContentType, "text/plain") {
		page.Text = strings.TrimSpace(page.HTML)
		return page, nil
	}

	title, text, err := extract.VisibleText(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	page.Title = title
	page.Text = text

	if f.readability {
		f.applyReadability(page)
	}

	return page, nil
}

func (f *Fetcher) applyReadability(page *Page) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return
	}
	article, err := readability.FromReader(strings.NewReader(page.HTML), pageURL)
	if err != nil {
		return
	}

	text := compactLines(article.TextContent)
	if text == "" {
		return
	}
	page.Text = text
	if t := strings.TrimSpace(article.Title); t != "" {
		page.Title = t
	}
	page.Byline = strings.TrimSpace(article.Byline)
}

// compactLines trims every line and drops blank ones
func compactLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// FetchWithRetry retries transient failures (network errors, 429, 5xx)
// with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchMaxRetries; attempt++ {
		page, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < fetchMaxRetries {
			fetchSleepFunc(time.Duration(attempt) * time.Second)
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", fetchMaxRetries, lastErr)
}
