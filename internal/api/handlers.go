package api

import (
	"net/http"

	"reinvent/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"openai": gin.H{
				"model":      cfg.OpenAI.Model,
				"fast_model": cfg.OpenAI.FastModel,
			},
			"job_search": gin.H{
				"max_results": cfg.JobSearch.MaxResults,
			},
		})
	}
}
