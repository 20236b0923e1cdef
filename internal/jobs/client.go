package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SerpClient handles communication with the SerpAPI Google Jobs engine
type SerpClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewSerpClient creates a new SerpAPI client
func NewSerpClient(apiKey string, timeout time.Duration) *SerpClient {
	return &SerpClient{
		BaseURL: "https://serpapi.com/search",
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// JobResult represents a single normalized job posting
type JobResult struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Via         string `json:"via,omitempty"`
	Description string `json:"description"`
	PostedAt    string `json:"posted_at,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	Salary      string `json:"salary,omitempty"`
	ShareLink   string `json:"share_link,omitempty"`
	ApplyLink   string `json:"apply_link,omitempty"`
}

// SearchResponse represents a normalized job search response
type SearchResponse struct {
	Query    string      `json:"query"`
	Location string      `json:"location,omitempty"`
	Results  []JobResult `json:"results"`
}

// Search queries Google Jobs for the given role and location
func (c *SerpClient) Search(ctx context.Context, query, location string, maxResults int) (*SearchResponse, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("engine", "google_jobs")
	q.Set("q", query)
	if location != "" {
		q.Set("location", location)
	}
	q.Set("api_key", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("job search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SerpAPI returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var serpResults struct {
		Error      string `json:"error"`
		JobResults []struct {
			Title       string `json:"title"`
			CompanyName string `json:"company_name"`
			Location    string `json:"location"`
			Via         string `json:"via"`
			Description string `json:"description"`
			ShareLink   string `json:"share_link"`
			Extensions  struct {
				PostedAt     string `json:"posted_at"`
				ScheduleType string `json:"schedule_type"`
				Salary       string `json:"salary"`
			} `json:"detected_extensions"`
			ApplyOptions []struct {
				Title string `json:"title"`
				Link  string `json:"link"`
			} `json:"apply_options"`
		} `json:"jobs_results"`
	}

	if err := json.Unmarshal(body, &serpResults); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if serpResults.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", serpResults.Error)
	}

	results := make([]JobResult, 0)
	limit := maxResults
	if limit <= 0 || limit > len(serpResults.JobResults) {
		limit = len(serpResults.JobResults)
	}

	for i := 0; i < limit; i++ {
		r := serpResults.JobResults[i]
		job := JobResult{
			Title:       r.Title,
			Company:     r.CompanyName,
			Location:    r.Location,
			Via:         r.Via,
			Description: r.Description,
			PostedAt:    r.Extensions.PostedAt,
			Schedule:    r.Extensions.ScheduleType,
			Salary:      r.Extensions.Salary,
			ShareLink:   r.ShareLink,
		}
		if len(r.ApplyOptions) > 0 {
			job.ApplyLink = r.ApplyOptions[0].Link
		}
		results = append(results, job)
	}

	return &SearchResponse{
		Query:    query,
		Location: location,
		Results:  results,
	}, nil
}
