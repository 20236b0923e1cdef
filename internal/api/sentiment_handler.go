package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"reinvent/internal/achievement"
	"reinvent/internal/db"
	"reinvent/internal/llm"
	"reinvent/internal/weekly"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SentimentRequest struct {
	WeekStart string `json:"week_start_date"`
}

// SentimentResult is the stored shape of one AI reflection analysis
type SentimentResult struct {
	OverallSentiment string   `json:"overall_sentiment"`
	Confidence       float64  `json:"confidence"`
	Emotions         []string `json:"emotions,omitempty"`
	Insights         string   `json:"insights,omitempty"`
	Fallback         bool     `json:"fallback,omitempty"`
}

const sentimentPrompt = `Analyze the emotional tone of this weekly career reflection.

Accomplishments: %s
Challenges: %s
Lessons learned: %s

Return a JSON object with:
- "overall_sentiment": one of "positive", "neutral", "negative", "mixed"
- "confidence": 0.0 to 1.0
- "emotions": up to 4 emotion words present in the text
- "insights": one short coaching observation (max 2 sentences)`

// AnalyzeSentimentHandler runs the reflection through the LLM and
// stores the result on the reflection row. An LLM failure degrades to a
// neutral result rather than an error: the ritual must never be blocked
// by the analysis.
func AnalyzeSentimentHandler(chat *llm.ChatClient, fastModel string, engine *achievement.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)

		var req SentimentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		week, ok := parseWeek(req.WeekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week_start_date, expected YYYY-MM-DD"}})
			return
		}

		var ref weekly.Reflection
		if err := db.DB.Where("user_id = ? AND week_start = ?", uid, week).First(&ref).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No reflection for this week"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		messages := []llm.ChatMessage{
			{Role: "system", Content: "You are a career coach analyzing reflection sentiment. Output only JSON."},
			{Role: "user", Content: fmt.Sprintf(sentimentPrompt, ref.Accomplishments, ref.Challenges, ref.Lessons)},
		}

		var result SentimentResult
		if err := chat.ChatJSON(c.Request.Context(), messages, llm.ChatOptions{Model: fastModel}, &result); err != nil {
			log.Printf("[Sentiment] analysis failed for user %d week %s: %v", uid, week.Format("2006-01-02"), err)
			result = SentimentResult{OverallSentiment: "neutral", Confidence: 0, Fallback: true}
		}
		if result.OverallSentiment == "" {
			result.OverallSentiment = "neutral"
			result.Fallback = true
		}

		raw, err := json.Marshal(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to encode analysis"}})
			return
		}
		ref.Sentiment = datatypes.JSON(raw)
		if err := db.DB.Save(&ref).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		// The week just became AI-analyzed; the analysis badges key off
		// the reflection action.
		rating := 0
		if ref.WeekRating != nil {
			rating = *ref.WeekRating
		}
		newBadges, evalErr := engine.Evaluate(c.Request.Context(), uid, achievement.ActionFridayReflection,
			achievement.ReflectionContext{Week: week, Rating: rating, Analyzed: true})
		if evalErr != nil {
			newBadges = nil
		}

		c.JSON(http.StatusOK, gin.H{
			"sentiment":  result,
			"new_badges": badgePayload(newBadges),
		})
	}
}
