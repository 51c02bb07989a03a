package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/lioncity/rentqa/pkg/utils"
)

// Government portals reject default Go user agents, so fetch as a browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher downloads pages with a bounded timeout and limited retries.
type Fetcher struct {
	client  *http.Client
	retries int
	logger  *zap.Logger
}

// NewFetcher creates a fetcher. timeout bounds each attempt; retries is the
// number of attempts after the first.
func NewFetcher(timeout time.Duration, retries int, logger *zap.Logger) *Fetcher {
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
	}
}

// Fetch downloads the page body. Transient failures (network errors, 5xx)
// are retried with a linear backoff; 4xx responses fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			f.logger.Debug("retrying fetch", zap.String("url", url), zap.Int("attempt", attempt))
		}
		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (body string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode >= 500, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}
	return string(data), false, nil
}

// ExtractText strips markup from an HTML page and returns normalized plain
// text. Script, style, and other non-content elements are dropped; block
// elements become line breaks so paragraph structure survives for chunking.
func ExtractText(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var b strings.Builder
	collectText(doc, &b)
	return utils.NormalizeWhitespace(b.String())
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
	"nav":      true,
	"footer":   true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "br": true, "table": true, "ul": true, "ol": true,
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteString("\n")
	}
}
