// Package htmltext downloads article pages and extracts their paragraph text.
package htmltext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kailas-cloud/reliefqa/internal/domain"
)

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 8 << 20

// Extractor fetches a URL and returns the text of every <p> element.
type Extractor struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Config holds extractor settings.
type Config struct {
	Client    *http.Client
	UserAgent string
	Logger    *zap.Logger
}

// New creates an Extractor. A nil client falls back to http.DefaultClient.
func New(cfg Config) *Extractor {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, userAgent: cfg.UserAgent, logger: logger}
}

// Paragraphs downloads url and returns its paragraph texts in document order.
// Non-2xx responses are reported as domain.ErrBodyFetch.
func (e *Extractor) Paragraphs(ctx context.Context, url string) ([]string, error) {
	if url == "" {
		return nil, fmt.Errorf("empty url: %w", domain.ErrBodyFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, domain.ErrBodyFetch)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", url, domain.ErrBodyFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s returned %d: %w", url, resp.StatusCode, domain.ErrBodyFetch)
	}

	paras, err := ParseParagraphs(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", url, domain.ErrBodyFetch, err)
	}

	e.logger.Debug("Extracted paragraphs", zap.String("url", url), zap.Int("count", len(paras)))
	return paras, nil
}

// ParseParagraphs returns the text content of every <p> element in document order.
// Text is kept as-is, whitespace included.
func ParseParagraphs(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	paras := []string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			paras = append(paras, textContent(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return paras, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
