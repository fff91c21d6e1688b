package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
)

const probeUserAgent = "docstage-linkcheck/1.0"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newProbeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

type externalProbe struct {
	page string
	url  string
}

// probeAll checks external links under bounded concurrency. Broken links are
// appended to the result; network failures are reported per link, not as a
// check failure.
func (c *Checker) probeAll(ctx context.Context, probes []externalProbe, result *Result) error {
	if len(probes) == 0 {
		return nil
	}

	sem := make(chan struct{}, c.opts.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range probes {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(p externalProbe) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := c.probeExternal(ctx, p.url); err != nil {
				mu.Lock()
				result.Issues = append(result.Issues, Issue{Page: p.page, Link: p.url, Reason: err.Error()})
				mu.Unlock()
				slog.Warn("Broken external link",
					logfields.Destination(p.page),
					logfields.URL(p.url),
					logfields.Error(err))
			}
		}(p)
	}
	wg.Wait()
	return nil
}

// probeExternal tries HEAD first and falls back to GET, accepting
// auth-gated responses as proof the URL exists.
func (c *Checker) probeExternal(ctx context.Context, linkURL string) error {
	if strings.HasPrefix(linkURL, "//") {
		linkURL = "https:" + linkURL
	}

	status, headErr := c.request(ctx, http.MethodHead, linkURL)
	if headErr == nil && acceptableStatus(status) {
		return nil
	}

	status, getErr := c.request(ctx, http.MethodGet, linkURL)
	if getErr != nil {
		if headErr != nil {
			return headErr
		}
		return getErr
	}
	if acceptableStatus(status) {
		return nil
	}
	return fmt.Errorf("HTTP %d", status)
}

func (c *Checker) request(ctx context.Context, method, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// acceptableStatus treats authentication and authorization responses as
// existing links; they resolve, they just need credentials.
func acceptableStatus(status int) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	return status < 400
}
