// Package factcheck searches published fact-check reviews for a claim.
package factcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/infofact/internal/cache"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/util"
	"github.com/ppiankov/infofact/internal/worker"
)

// ErrMissingAPIKey is returned when no claim-search API key is configured
var ErrMissingAPIKey = errors.New("fact-check API key not set (FACTCHECK_API_KEY)")

// DefaultBaseURL is the Google Fact Check Tools API root
const DefaultBaseURL = "https://factchecktools.googleapis.com/v1alpha1"

// apiKeyHeader carries the key so it never appears in a request URL, and
// so never in a transport error
const apiKeyHeader = "X-Goog-Api-Key"

// Client queries the claims:search endpoint
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	pageSize   int
	httpClient *http.Client
	cache      cache.Cache
	limiter    *worker.Limiter
}

// NewClient creates a client. c and limiter may be nil.
func NewClient(cfg model.FactCheckConfig, c cache.Cache, limiter *worker.Limiter) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		language: cfg.LanguageCode,
		pageSize: cfg.PageSize,
		httpClient: util.NewHTTPClient(timeout, util.ProxyConfig{
			HTTPProxy:  cfg.HTTPProxy,
			HTTPSProxy: cfg.HTTPSProxy,
			NoProxy:    cfg.NoProxy,
		}),
		cache:   c,
		limiter: limiter,
	}, nil
}

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			ReviewDate    string `json:"reviewDate"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search returns one Evidence per published review matching query.
// No matches is an empty slice and a nil error.
func (c *Client) Search(ctx context.Context, query string) ([]model.Evidence, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Evidence{}, nil
	}

	key := cache.Key("factcheck", query, c.language)
	var cached []model.Evidence
	if cache.GetJSON(c.cache, key, &cached) {
		return cached, nil
	}

	endpoint := c.searchURL(query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact-check API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	evidence := make([]model.Evidence, 0, len(parsed.Claims))
	for _, claim := range parsed.Claims {
		for _, review := range claim.ClaimReview {
			publisher := review.Publisher.Name
			if publisher == "" {
				publisher = review.Publisher.Site
			}
			evidence = append(evidence, model.Evidence{
				Claim:      query,
				ClaimText:  claim.Text,
				Claimant:   claim.Claimant,
				Publisher:  publisher,
				Title:      review.Title,
				URL:        review.URL,
				Rating:     review.TextualRating,
				ReviewDate: review.ReviewDate,
			})
		}
	}

	_ = cache.SetJSON(c.cache, key, evidence, 0)

	return evidence, nil
}

func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("query", query)
	if c.language != "" {
		params.Set("languageCode", c.language)
	}
	if c.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.pageSize))
	}
	return c.baseURL + "/claims:search?" + params.Encode()
}
