package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// PostingExtractor fetches a job posting page and pulls out readable
// description text for display and LLM coaching prompts.
type PostingExtractor struct {
	httpClient *http.Client
	userAgent  string
	maxSizeMB  int
}

// Posting is the cleaned content of a job posting page
type Posting struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	SiteName  string `json:"site_name,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// NewPostingExtractor creates an extractor with the given fetch limits
func NewPostingExtractor(timeout time.Duration, userAgent string, maxSizeMB int) *PostingExtractor {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &PostingExtractor{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxSizeMB: maxSizeMB,
	}
}

// Extract fetches the posting URL and returns its readable content
func (e *PostingExtractor) Extract(ctx context.Context, pageURL string) (*Posting, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return nil, fmt.Errorf("URL must start with http:// or https://")
	}

	html, err := e.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posting: %w", err)
	}

	return e.parse(pageURL, html)
}

// fetchHTML retrieves HTML content from a URL
func (e *PostingExtractor) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Standard browser headers; many job boards 403 bare clients
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}

	maxBytes := int64(e.maxSizeMB * 1024 * 1024)
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) >= maxBytes {
		return "", fmt.Errorf("content exceeds size limit of %dMB", e.maxSizeMB)
	}

	return string(body), nil
}

// parse runs readability extraction with a goquery fallback for pages
// readability cannot score (sparse markup, heavy boilerplate).
func (e *PostingExtractor) parse(pageURL, html string) (*Posting, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text := normalizeWhitespace(article.TextContent)
		return &Posting{
			URL:       pageURL,
			Title:     article.Title,
			SiteName:  article.SiteName,
			Excerpt:   article.Excerpt,
			Text:      text,
			WordCount: len(strings.Fields(text)),
		}, nil
	}

	return e.parseFallback(pageURL, html)
}

// parseFallback strips boilerplate with goquery and returns body text
func (e *PostingExtractor) parseFallback(pageURL, html string) (*Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, nav, aside, footer, header, iframe, noscript").Remove()

	var contentSelection *goquery.Selection
	if article := doc.Find("article").First(); article.Length() > 0 {
		contentSelection = article
	} else if main := doc.Find("main").First(); main.Length() > 0 {
		contentSelection = main
	} else {
		contentSelection = doc.Find("body")
	}

	text := normalizeWhitespace(contentSelection.Text())
	if text == "" {
		return nil, fmt.Errorf("no readable content found")
	}

	return &Posting{
		URL:       pageURL,
		Title:     title,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
