package routes

import (
	"github.com/gin-gonic/gin"

	"video-subtitler/internal/api/v1/handlers"
)

// RegisterRoutes registers all v1 API routes.
func RegisterRoutes(router *gin.RouterGroup, subtitles *handlers.SubtitleHandler, admin *handlers.AdminHandler) {
	files := router.Group("/files")
	{
		files.POST("", subtitles.Upload)
		files.POST("/:fileId/audio", subtitles.ExtractAudio)
		files.POST("/:fileId/transcription", subtitles.Transcribe)
		files.GET("/:fileId/transcription", subtitles.GetTranscript)
		files.PUT("/:fileId/transcription", subtitles.UpdateTranscript)
		files.POST("/:fileId/translations", subtitles.Translate)
		files.GET("/:fileId/translations/:language", subtitles.GetTranslation)
		files.POST("/:fileId/embed/hard", subtitles.EmbedHard)
		files.POST("/:fileId/embed/soft", subtitles.EmbedSoft)
		files.GET("/:fileId/download/video", subtitles.DownloadVideo)
		files.GET("/:fileId/download/subtitle", subtitles.DownloadSubtitle)
		files.GET("/:fileId/download/embedded", subtitles.DownloadEmbedded)
	}

	router.GET("/usage", subtitles.GetUsage)
	router.GET("/providers", subtitles.ListProviders)

	adminGroup := router.Group("/admin")
	{
		adminGroup.POST("/reset", admin.ResetAll)
		adminGroup.POST("/reset/:identity", admin.ResetIdentity)
		adminGroup.GET("/stats", admin.Stats)
		adminGroup.POST("/limits/reload", admin.ReloadLimits)
		adminGroup.PUT("/limits/:identity", admin.SetLimitsOverride)
		adminGroup.DELETE("/limits/:identity", admin.RemoveLimitsOverride)
	}
}
