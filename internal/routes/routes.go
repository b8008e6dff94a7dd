package routes

import (
	"github.com/gin-gonic/gin"

	"givehub/internal/authz"
	"givehub/internal/handlers"
	"givehub/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	verificationHandler *handlers.VerificationHandler,
	reviewHandler *handlers.ReviewHandler,
) *gin.Engine {

	// ---- public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	// Organization dashboard
	verification := r.Group("/verification", middleware.RequireRoles(authz.RoleOrganization))
	{
		verification.GET("/status", verificationHandler.Status)
		verification.POST("/submit", verificationHandler.Submit)
	}

	// Reviewer/admin surface
	admin := r.Group("/admin/verifications",
		middleware.RequireRoles(authz.RoleReviewer, authz.RoleAdmin),
	)
	{
		admin.GET("/", reviewHandler.ListPending)
		admin.GET("/:id", reviewHandler.Detail)
		admin.GET("/:id/document", reviewHandler.Document)
		admin.POST("/:id/approve", reviewHandler.Approve)
		admin.POST("/:id/reject", reviewHandler.Reject)
	}

	return r
}
