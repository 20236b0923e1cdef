package api

import (
	"net/http"
	"path"
	"time"

	"reinvent/internal/achievement"
	"reinvent/internal/auth"
	"reinvent/internal/config"
	"reinvent/internal/db"
	"reinvent/internal/jobs"
	"reinvent/internal/llm"
	"reinvent/internal/resume"
	"reinvent/internal/tools"
	"reinvent/internal/user"
	"reinvent/internal/weekly"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const fetchUserAgent = "Mozilla/5.0 (X11; Linux x86_64) reinvent/1.0"

func usersExist() bool {
	var count int64
	if db.DB == nil {
		return false
	}
	db.DB.Model(&user.User{}).Count(&count)
	return count > 0
}

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/reinvent" or any custom path, always starts with '/'

	// Core services: the weekly projection feeds the badge engine, the
	// ledger does the awarding.
	activity := weekly.NewLog(db.DB)
	ledger := achievement.NewGormLedger(db.DB)
	engine := achievement.NewEngine(activity, ledger)

	// One LLM queue for the whole process; interactive interview turns
	// preempt background analysis.
	breaker := tools.NewCircuitBreaker(5, 2*time.Minute)
	manager := llm.NewManager(llm.DefaultConfig(), breaker)
	interactiveChat := llm.NewChatClient(
		llm.NewClient(manager, llm.PriorityCritical, llm.CriticalCallTimeout), &cfg.OpenAI)
	backgroundChat := llm.NewChatClient(
		llm.NewClient(manager, llm.PriorityBackground, llm.BackgroundCallTimeout), &cfg.OpenAI)

	serpClient := jobs.NewSerpClient(cfg.JobSearch.SerpAPIKey, 20*time.Second)
	extractor := jobs.NewPostingExtractor(20*time.Second, fetchUserAgent, 5)
	resumeParser := resume.NewParser(backgroundChat, cfg.OpenAI.FastModel)

	// Load HTML templates
	r.LoadHTMLFiles("./frontend/index.html", "./frontend/login.html", "./frontend/setup.html")

	// Serve frontend static assets
	r.Static(path.Join(subpath, "static"), "./static")
	r.Static(path.Join(subpath, "css"), "./frontend/css")
	r.Static(path.Join(subpath, "js"), "./frontend/js")

	// Pretty HTML routes with dynamic subpath injection and user existence check
	r.GET(subpath, func(c *gin.Context) {
		if !usersExist() {
			c.Redirect(http.StatusFound, path.Join(subpath, "setup"))
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"subpath": subpath})
	})
	r.GET(path.Join(subpath, "login"), func(c *gin.Context) {
		if !usersExist() {
			c.Redirect(http.StatusFound, path.Join(subpath, "setup"))
			return
		}
		c.HTML(http.StatusOK, "login.html", gin.H{"subpath": subpath})
	})
	r.GET(path.Join(subpath, "setup"), func(c *gin.Context) {
		c.HTML(http.StatusOK, "setup.html", gin.H{"subpath": subpath})
	})
	r.GET(path.Join(subpath, "favicon.ico"), func(c *gin.Context) {
		c.File("./static/favicon.ico")
	})
	// Redirect /subpath/ to /subpath (no duplicate panic)
	r.GET(subpath+"/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, subpath)
	})

	// API routes
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())
		group.PUT("/users/me", auth.AuthMiddleware(cfg, rdb, false), UpdateMeHandler())

		// Weekly rituals
		group.POST("/weekly/goals", auth.AuthMiddleware(cfg, rdb, false), SetGoalsHandler(engine))
		group.GET("/weekly/goals", auth.AuthMiddleware(cfg, rdb, false), GetGoalsHandler())
		group.POST("/weekly/reflection", auth.AuthMiddleware(cfg, rdb, false), SubmitReflectionHandler(engine))
		group.GET("/weekly/reflection", auth.AuthMiddleware(cfg, rdb, false), GetReflectionHandler())
		group.POST("/weekly/progress", auth.AuthMiddleware(cfg, rdb, false), SaveProgressHandler(engine, activity))
		group.GET("/weekly/progress", auth.AuthMiddleware(cfg, rdb, false), GetProgressHandler())
		group.GET("/stats", auth.AuthMiddleware(cfg, rdb, false), StatsHandler(engine))

		// Badges
		group.GET("/badges", auth.AuthMiddleware(cfg, rdb, false), ListBadgesHandler(engine, ledger))
		group.POST("/badges/check", auth.AuthMiddleware(cfg, rdb, false), CheckBadgesHandler(engine, activity))
		group.GET("/badges/milestones", auth.AuthMiddleware(cfg, rdb, false), NextMilestonesHandler(engine))

		// AI reflection analysis
		group.POST("/weekly/reflection/sentiment", auth.AuthMiddleware(cfg, rdb, false),
			AnalyzeSentimentHandler(backgroundChat, cfg.OpenAI.FastModel, engine))

		// Job search
		group.GET("/jobs/search", auth.AuthMiddleware(cfg, rdb, false), JobSearchHandler(cfg, serpClient))
		group.POST("/jobs/extract", auth.AuthMiddleware(cfg, rdb, false), ExtractPostingHandler(extractor))

		// Resume upload
		group.POST("/resume/upload", auth.AuthMiddleware(cfg, rdb, false), UploadResumeHandler(cfg, resumeParser))

		// Mock interview (auth handled in-handler: browsers can't set WS headers)
		group.GET("/ws/interview", InterviewHandler(cfg, interactiveChat))
	}
	return r
}
