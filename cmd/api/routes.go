package main

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/aurora-blog/internal/ai"
	"github.com/yourusername/aurora-blog/internal/article"
	"github.com/yourusername/aurora-blog/internal/auth"
	"github.com/yourusername/aurora-blog/internal/media"
)

// setupRoutes は API グループと各モジュールの配線を行います。
func setupRoutes(
	router *gin.Engine,
	authManager *auth.Manager,
	articles article.Service,
	mediaService *media.Service,
	aiManager *ai.Manager,
) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/refresh", authManager.Refresh)
			authRoutes.POST("/logout", authManager.Logout)
		}

		// 記事の閲覧は匿名でも可能
		api.GET("/articles", article.ListHandler(articles))
		api.GET("/articles/:id", article.GetHandler(articles))

		// 書き込み系はハンドラー側で識別情報を要求する
		api.POST("/articles", article.CreateHandler(articles))
		api.PUT("/articles/:id", article.UpdateHandler(articles))
		api.DELETE("/articles/:id", article.DeleteHandler(articles))

		api.POST("/media", media.UploadHandler(mediaService))

		aiRoutes := api.Group("/ai")
		{
			aiRoutes.POST("/drafts", ai.RequestHandler(aiManager))
			aiRoutes.GET("/drafts/:id", ai.StatusHandler(aiManager))
		}
	}
}
