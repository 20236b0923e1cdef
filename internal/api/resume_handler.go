package api

import (
	"log"
	"net/http"
	"os"

	"reinvent/internal/config"
	"reinvent/internal/db"
	"reinvent/internal/resume"
	"reinvent/internal/user"

	"github.com/gin-gonic/gin"
)

// UploadResumeHandler accepts a PDF, extracts its text, parses it into
// a structured profile, and fills in any empty profile fields on the
// user. The stored file is temporary; it is removed after extraction.
func UploadResumeHandler(cfg *config.Config, parser *resume.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Multipart field 'file' required"}})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Failed to read upload"}})
			return
		}
		defer src.Close()

		maxBytes := int64(cfg.Uploads.MaxSizeMB) * 1024 * 1024
		path, err := resume.SaveUpload(cfg.Uploads.Dir, fileHeader.Filename, src, maxBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		defer os.Remove(path)

		text, err := resume.ExtractText(path)
		if err != nil {
			log.Printf("[Resume] extraction failed for user %d: %v", uid, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{"message": "Could not extract text from PDF"}})
			return
		}

		profile, err := parser.Parse(c.Request.Context(), text)
		if err != nil {
			log.Printf("[Resume] parse failed for user %d: %v", uid, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "Resume parsing failed"}})
			return
		}

		// Fill profile gaps, never overwrite what the user typed in.
		var u user.User
		if err := db.DB.First(&u, uid).Error; err == nil {
			changed := false
			if u.FullName == "" && profile.FullName != "" {
				u.FullName = profile.FullName
				changed = true
			}
			if u.TargetJob == "" && profile.Headline != "" {
				u.TargetJob = profile.Headline
				changed = true
			}
			if changed {
				if err := db.DB.Save(&u).Error; err != nil {
					log.Printf("[Resume] profile update failed for user %d: %v", uid, err)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}
