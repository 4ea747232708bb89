package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL bounds how long a site's robots.txt is trusted
const robotsTTL = 6 * time.Hour

// RobotsDecision is what robots.txt says about one URL
type RobotsDecision struct {
	Allowed    bool
	CrawlDelay time.Duration // zero when the site sets none
}

// RobotsChecker answers robots.txt questions per origin, caching each
// origin's rules for robotsTTL
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string
	rules      *gocache.Cache // scheme://host -> *robotstxt.RobotsData
}

// NewRobotsChecker creates a checker matching rules against the product
// token of userAgent
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  NormalizeUserAgent(userAgent),
		rules:      gocache.New(robotsTTL, robotsTTL),
	}
}

// Check looks up rawURL. A robots.txt that cannot be fetched allows
// everything; only an unparsable URL is an error.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (RobotsDecision, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RobotsDecision{}, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return RobotsDecision{}, fmt.Errorf("parse URL: no host in %q", rawURL)
	}

	data, err := r.rulesFor(ctx, parsed.Scheme+"://"+parsed.Host)
	if err != nil {
		return RobotsDecision{Allowed: true}, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	decision := RobotsDecision{Allowed: data.TestAgent(path, r.userAgent)}
	if group := data.FindGroup(r.userAgent); group != nil {
		decision.CrawlDelay = group.CrawlDelay
	}
	return decision, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	if cached, ok := r.rules.Get(origin); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules.SetDefault(origin, data)
	return data, nil
}

// NormalizeUserAgent reduces a user agent string to its product token
func NormalizeUserAgent(ua string) string {
	product, _, _ := strings.Cut(strings.TrimSpace(ua), " ")
	product, _, _ = strings.Cut(product, "/")
	return product
}
