package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const postingHTML = `<!DOCTYPE html>
<html>
<head><title>Senior Backend Engineer - Acme Corp</title></head>
<body>
<nav>Home | Jobs | About</nav>
<article>
<h1>Senior Backend Engineer</h1>
<p>Acme Corp is looking for a senior backend engineer to join our platform team.
You will design and operate distributed services written in Go, own the full
lifecycle of your systems, and mentor other engineers on the team.</p>
<p>Requirements: 5+ years of backend experience, strong knowledge of SQL and
message queues, experience running services in production on Kubernetes.</p>
<p>We offer flexible remote work, a learning budget, and a supportive
engineering culture with regular pairing and design reviews.</p>
</article>
<footer>Copyright Acme Corp</footer>
</body>
</html>`

func testExtractor(t *testing.T, handler http.HandlerFunc) (*PostingExtractor, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPostingExtractor(5*time.Second, "reinvent-bot/1.0", 2), server.URL
}

func TestExtract_ReadableContent(t *testing.T) {
	extractor, url := testExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "reinvent-bot") {
			t.Errorf("user agent not set: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(postingHTML))
	})

	posting, err := extractor.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(posting.Text, "distributed services written in Go") {
		t.Errorf("description text missing: %q", posting.Text)
	}
	if strings.Contains(posting.Text, "Copyright Acme Corp") {
		t.Errorf("boilerplate not stripped: %q", posting.Text)
	}
	if posting.WordCount == 0 {
		t.Errorf("word count not computed")
	}
}

func TestExtract_RejectsNonHTTPScheme(t *testing.T) {
	extractor := NewPostingExtractor(time.Second, "test", 1)
	if _, err := extractor.Extract(context.Background(), "ftp://example.com/job"); err == nil {
		t.Fatalf("expected scheme rejection")
	}
}

func TestExtract_RejectsNonHTML(t *testing.T) {
	extractor, url := testExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})

	if _, err := extractor.Extract(context.Background(), url); err == nil {
		t.Fatalf("expected content-type rejection")
	}
}

func TestExtract_NonOKStatus(t *testing.T) {
	extractor, url := testExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := extractor.Extract(context.Background(), url); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestParseFallback_SparseMarkup(t *testing.T) {
	extractor := NewPostingExtractor(time.Second, "test", 1)

	// Minimal page with no article scoring hooks
	html := `<html><head><title>Job</title></head><body><div>Short posting text here.</div></body></html>`
	posting, err := extractor.parseFallback("https://example.com/job", html)
	if err != nil {
		t.Fatalf("parseFallback: %v", err)
	}
	if !strings.Contains(posting.Text, "Short posting text here.") {
		t.Errorf("fallback text missing: %q", posting.Text)
	}
	if posting.Title != "Job" {
		t.Errorf("fallback title missing: %q", posting.Title)
	}
}
