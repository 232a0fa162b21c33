package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/controllers"
	"github.com/civicpulse/civicpulse/middleware"
	"github.com/civicpulse/civicpulse/notify"
	"github.com/civicpulse/civicpulse/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, bus *notify.Bus) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Count successful API reads for the stats endpoint
	r.Use(middleware.RequestCounter())

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	complaintController := controllers.NewComplaintController(db, bus)
	commentController := controllers.NewCommentController(db, bus)
	communityController := controllers.NewCommunityController(db, bus)
	postController := controllers.NewPostController(db, bus)
	uploadController := controllers.NewUploadController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public reads; a valid token enriches responses with the caller's state
	public := api.Group("")
	public.Use(middleware.AuthOptional())
	public.GET("/complaints", complaintController.List)
	public.GET("/complaints/:id", complaintController.Get)
	public.GET("/complaints/:id/stats", statsController.GetComplaintStats)
	public.GET("/comments", commentController.List)
	public.GET("/comments/:id", commentController.Get)
	public.GET("/communities", communityController.List)
	public.GET("/communities/:id", communityController.Get)
	public.GET("/communities/:id/members", communityController.Members)
	public.GET("/posts", postController.List)
	public.GET("/posts/:id", postController.Get)
	public.GET("/stats", statsController.GetStats)
	public.GET("/users/:id", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/complaints", complaintController.Create)
	protected.PUT("/complaints/:id", complaintController.Update)
	protected.PATCH("/complaints/:id/status", complaintController.UpdateStatus)
	protected.PATCH("/complaints/:id/assign", complaintController.Assign)
	protected.POST("/complaints/:id/vote", complaintController.Vote)
	protected.DELETE("/complaints/:id", complaintController.Delete)

	protected.POST("/comments", commentController.Create)
	protected.PUT("/comments/:id", commentController.Edit)
	protected.POST("/comments/:id/like", commentController.Like)
	protected.DELETE("/comments/:id", commentController.Delete)

	protected.POST("/communities", communityController.Create)
	protected.POST("/communities/:id/join", communityController.Join)
	protected.POST("/communities/:id/leave", communityController.Leave)
	protected.PATCH("/communities/:id/members/role", communityController.Promote)
	protected.PATCH("/communities/:id/settings", communityController.UpdateSettings)

	protected.POST("/posts", postController.Create)
	protected.PUT("/posts/:id", postController.Edit)
	protected.POST("/posts/:id/like", postController.Like)
	protected.POST("/posts/:id/pin", postController.Pin)
	protected.POST("/posts/:id/lock", postController.Lock)
	protected.DELETE("/posts/:id", postController.Delete)

	protected.POST("/upload", uploadController.UploadImage)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
