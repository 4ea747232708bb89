package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of a failed response ends up in an error
const maxErrorBody = 512

// statusError is a non-2xx reply from a provider endpoint
type statusError struct {
	Code   int
	Detail string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Detail)
}

// endpoint is a JSON HTTP API rooted at base
type endpoint struct {
	base   string
	client *http.Client
	header http.Header

	// detail extracts a readable message from an error body; "" falls
	// back to the raw body
	detail func(body []byte) string
}

func timeoutOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// call sends in (nil for a bodyless GET) to path and decodes the reply
// into out when out is non-nil
func (e *endpoint) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range e.header {
		req.Header[k] = vs
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if e.detail != nil {
			msg = e.detail(data)
		}
		if msg == "" {
			if len(data) > maxErrorBody {
				data = data[:maxErrorBody]
			}
			msg = string(data)
		}
		return &statusError{Code: resp.StatusCode, Detail: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
