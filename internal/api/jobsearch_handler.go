package api

import (
	"net/http"

	"reinvent/internal/config"
	"reinvent/internal/db"
	"reinvent/internal/jobs"
	"reinvent/internal/user"

	"github.com/gin-gonic/gin"
)

// JobSearchHandler proxies a role+location query to the jobs client.
// Defaults the query to the user's target job when none is given.
func JobSearchHandler(cfg *config.Config, client *jobs.SerpClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.JobSearch.SerpAPIKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{"message": "Job search is not configured"}})
			return
		}

		query := c.Query("q")
		if query == "" {
			// Fall back to the user's configured target job
			userId, _ := c.Get("userId")
			var u user.User
			if err := db.DB.First(&u, userId.(uint)).Error; err == nil {
				query = u.TargetJob
			}
		}
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Query parameter 'q' required"}})
			return
		}
		location := c.Query("location")

		resp, err := client.Search(c.Request.Context(), query, location, cfg.JobSearch.MaxResults)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "Job search failed"}})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractPostingHandler fetches a posting page and returns its readable text
func ExtractPostingHandler(extractor *jobs.PostingExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Field 'url' required"}})
			return
		}

		posting, err := extractor.Extract(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "Failed to extract posting"}})
			return
		}
		c.JSON(http.StatusOK, posting)
	}
}
