package apigateway

import (
	"crop-asr-qa-platform/backend/internal/auth"
	"crop-asr-qa-platform/backend/internal/configmanagement"
	"crop-asr-qa-platform/backend/internal/sessionmanagement"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the main Gin router for the API gateway.
// Admin routes (provider and vocabulary management) require a session token;
// the testing workflow under /api is open to QA testers.
func SetupRouter() *gin.Engine {
	router := gin.Default()

	// Public routes (login/logout)
	authRoutes := router.Group("/auth")
	{
		// auth.LoadAdminCredentials() must have been called at startup.
		authRoutes.POST("/login", auth.LoginHandler)
		authRoutes.POST("/logout", auth.LogoutHandler)
	}

	// Authenticated admin routes
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware())
	{
		// ASR Provider Configuration Management Routes
		providerRoutes := adminRoutes.Group("/providers")
		{
			providerRoutes.POST("", configmanagement.CreateProviderConfigHandler)
			providerRoutes.GET("", configmanagement.ListProviderConfigsHandler)
			providerRoutes.GET("/:id", configmanagement.GetProviderConfigHandler)
			providerRoutes.PUT("/:id", configmanagement.UpdateProviderConfigHandler)
			providerRoutes.DELETE("/:id", configmanagement.DeleteProviderConfigHandler)
		}

		// Crop Vocabulary Management Routes
		cropRoutes := adminRoutes.Group("/crops")
		{
			cropRoutes.POST("/upload", configmanagement.UploadCropsHandler)
			cropRoutes.GET("", configmanagement.ListCropsHandler)
			cropRoutes.GET("/languages", configmanagement.CropLanguageCountsHandler)
		}
	}

	// Test session workflow routes
	apiRoutes := router.Group("/api")
	{
		sessionRoutes := apiRoutes.Group("/sessions")
		{
			sessionRoutes.POST("", sessionmanagement.CreateSessionHandler)
			sessionRoutes.GET("", sessionmanagement.ListSessionsHandler)
			sessionRoutes.GET("/:id", sessionmanagement.GetSessionHandler)
			sessionRoutes.POST("/:id/recordings/start", sessionmanagement.StartRecordingHandler)
			sessionRoutes.POST("/:id/recordings", sessionmanagement.SubmitRecordingHandler)
			sessionRoutes.POST("/:id/advance", sessionmanagement.AdvanceHandler)
			sessionRoutes.POST("/:id/abort", sessionmanagement.AbortSessionHandler)
			sessionRoutes.GET("/:id/summary", sessionmanagement.SummaryHandler)
			sessionRoutes.GET("/:id/export", sessionmanagement.ExportHandler)
			sessionRoutes.GET("/:id/results", sessionmanagement.ListSessionResultsHandler)
		}
	}

	return router
}
