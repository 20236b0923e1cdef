package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const serpFixture = `{
	"jobs_results": [
		{
			"title": "Senior Backend Engineer",
			"company_name": "Acme Corp",
			"location": "Berlin, Germany",
			"via": "LinkedIn",
			"description": "Build distributed systems in Go.",
			"share_link": "https://www.google.com/search?q=job1",
			"detected_extensions": {"posted_at": "3 days ago", "schedule_type": "Full-time", "salary": "80k-100k"},
			"apply_options": [{"title": "LinkedIn", "link": "https://linkedin.com/jobs/1"}]
		},
		{
			"title": "Platform Engineer",
			"company_name": "Beta GmbH",
			"location": "Remote",
			"via": "Indeed",
			"description": "Kubernetes and CI pipelines."
		},
		{
			"title": "SRE",
			"company_name": "Gamma AG",
			"location": "Munich, Germany",
			"via": "StepStone",
			"description": "On-call and observability."
		}
	]
}`

func testSerpClient(t *testing.T, handler http.HandlerFunc) *SerpClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewSerpClient("test-api-key", 5*time.Second)
	client.BaseURL = server.URL
	return client
}

func TestSearch_NormalizesResults(t *testing.T) {
	client := testSerpClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_jobs" {
			t.Errorf("wrong engine: %s", q.Get("engine"))
		}
		if q.Get("q") != "backend engineer" || q.Get("location") != "Berlin" {
			t.Errorf("query params not forwarded: %v", q)
		}
		if q.Get("api_key") != "test-api-key" {
			t.Errorf("api key missing")
		}
		w.Write([]byte(serpFixture))
	})

	resp, err := client.Search(context.Background(), "backend engineer", "Berlin", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}

	first := resp.Results[0]
	if first.Title != "Senior Backend Engineer" || first.Company != "Acme Corp" {
		t.Errorf("first result misparsed: %+v", first)
	}
	if first.PostedAt != "3 days ago" || first.Salary != "80k-100k" {
		t.Errorf("extensions misparsed: %+v", first)
	}
	if first.ApplyLink != "https://linkedin.com/jobs/1" {
		t.Errorf("apply link missing: %+v", first)
	}
	if resp.Results[1].ApplyLink != "" {
		t.Errorf("result without apply options should have empty link")
	}
}

func TestSearch_LimitsResults(t *testing.T) {
	client := testSerpClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(serpFixture))
	})

	resp, err := client.Search(context.Background(), "engineer", "", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("expected limit of 2, got %d", len(resp.Results))
	}
}

func TestSearch_APIError(t *testing.T) {
	client := testSerpClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Invalid API key"}`))
	})

	if _, err := client.Search(context.Background(), "engineer", "", 0); err == nil {
		t.Fatalf("expected error from SerpAPI error field")
	}
}

func TestSearch_NonOKStatus(t *testing.T) {
	client := testSerpClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.Search(context.Background(), "engineer", "", 0); err == nil {
		t.Fatalf("expected error for 429 response")
	}
}
