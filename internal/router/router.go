package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/handler"
	"github.com/campusworks/review-portal/internal/middleware"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Group      *handler.GroupHandler
	Review     *handler.ReviewHandler
	Report     *handler.ReportHandler
	FinalSheet *handler.FinalSheetHandler
	Roster     *handler.RosterHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Generated PDFs are immutable once written (timestamped names), so
	// they can be cached for a day.
	reportsGroup := router.Group("/reports")
	reportsGroup.Use(middleware.CacheControl(86400))
	{
		reportsGroup.Static("/", cfg.ReportDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.POST("/verify-reset-otp", handlers.Auth.VerifyOTP)
		// Resending reuses the forgot-password flow; a fresh OTP replaces
		// the previous one in Redis.
		auth.POST("/resend-reset-otp", handlers.Auth.ForgotPassword)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)

		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
		auth.POST("/change-password", middleware.RequireAuth(authService), handlers.Auth.ChangePassword)
	}

	// ─── 2. Evaluator Group (JWT) ──────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/groups", handlers.Group.ListGroups)
		api.GET("/groups/:group_id", handlers.Group.GetGroup)
		api.GET("/panels/me", handlers.Group.MyPanel)
		api.GET("/members", handlers.Review.MembersByQuery)
		api.GET("/final-sheet/summary", handlers.FinalSheet.Summary)
		api.GET("/final-sheet/comments", handlers.FinalSheet.GetComments)
		api.POST("/final-sheet/comments", handlers.FinalSheet.SaveComments)
		api.GET("/attendance/pdf", handlers.Report.AttendanceSheet)
		api.GET("/reviews/:review_number/config", handlers.Review.ConfigByParam)

		// Every review page shares one handler set; each group binds the
		// shared handlers to its own review number, which keeps the five
		// sheets a single code path while preserving the literal
		// /api/review0 ... /api/review4 paths the pages call.
		for _, m := range review.All() {
			n := m.Number
			rg := api.Group(fmt.Sprintf("/review%d", n))
			{
				rg.GET("/config", handlers.Review.Config(n))
				rg.GET("/members", handlers.Review.Members(n))
				rg.GET("/marks", handlers.Review.Sheet(n))
				rg.POST("/marks", handlers.Review.SaveMarks(n))
				rg.POST("/attendance", handlers.Review.Attendance(n))
				rg.GET("/attendance/summary", handlers.Review.AttendanceSummary(n))
				rg.GET("/responses", handlers.Review.Responses(n))
				rg.POST("/responses", handlers.Review.SaveResponses(n))
				rg.POST("/generate-pdf", handlers.Report.Generate(n))
				rg.GET("/download-pdf", handlers.Report.DownloadLatest(n))
				rg.GET("/download-pdf/:filename", handlers.Report.Download(n))
			}
		}

		// The pseudo review 5 renders the consolidated final sheet.
		finalPDF := api.Group(fmt.Sprintf("/review%d", review.FinalSheetNumber))
		{
			finalPDF.POST("/generate-pdf", handlers.Report.Generate(review.FinalSheetNumber))
			finalPDF.GET("/download-pdf", handlers.Report.DownloadLatest(review.FinalSheetNumber))
			finalPDF.GET("/download-pdf/:filename", handlers.Report.Download(review.FinalSheetNumber))
		}
	}

	// ─── 3. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		adminAPI.POST("/groups", handlers.Group.CreateGroup)
		adminAPI.PUT("/groups/:group_id", handlers.Group.UpdateGroup)
		adminAPI.DELETE("/groups/:group_id", handlers.Group.DeleteGroup)
		adminAPI.POST("/groups/:group_id/members", handlers.Group.AddMember)
		adminAPI.DELETE("/groups/:group_id/members/:roll_no", handlers.Group.RemoveMember)
		adminAPI.POST("/panels", handlers.Group.AssignPanel)
		adminAPI.POST("/roster/import", handlers.Roster.Import)
		adminAPI.GET("/roster/export", handlers.Roster.Export)
		adminAPI.GET("/reports", handlers.Report.List)
		adminAPI.GET("/auth/users", handlers.Auth.ListUsers)
		adminAPI.DELETE("/auth/users/:id", handlers.Auth.DeleteUser)
		adminAPI.POST("/auth/admin-reset-password", handlers.Auth.AdminResetPassword)
	}

	// ─── 4. WebSocket Group (WS Auth via query token) ──────────────────
	wsGroup := router.Group("/ws")
	wsGroup.Use(middleware.RequireWSAuth(authService))
	{
		wsGroup.GET("/attendance/stream", handlers.WS.AttendanceStream)
	}

	return router
}
