package article

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/aurora-blog/internal/auth"
)

type writeRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

// ListHandler は GET /api/articles のハンドラーを返します。
func ListHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := service.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "記事一覧の取得に失敗しました",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"articles": articles})
	}
}

// GetHandler は GET /api/articles/:id のハンドラーを返します。
func GetHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"code":    "ARTICLE_NOT_FOUND",
					"message": "指定された記事は存在しません",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "記事の取得に失敗しました",
			})
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// CreateHandler は POST /api/articles のハンドラーを返します。認証必須。
func CreateHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		var req writeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "title と content を JSON で送ってください",
			})
			return
		}

		a := &Article{
			ID:       uuid.NewString(),
			Title:    req.Title,
			Content:  req.Content,
			AuthorID: identity.ID,
			Tags:     req.Tags,
		}
		if err := service.Create(c.Request.Context(), a); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "記事の保存に失敗しました",
			})
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// UpdateHandler は PUT /api/articles/:id のハンドラーを返します。認証必須。
func UpdateHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		var req writeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "title と content を JSON で送ってください",
			})
			return
		}

		a := &Article{
			ID:      c.Param("id"),
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		}
		if err := service.Update(c.Request.Context(), a); err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"code":    "ARTICLE_NOT_FOUND",
					"message": "指定された記事は存在しません",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "記事の更新に失敗しました",
			})
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// DeleteHandler は DELETE /api/articles/:id のハンドラーを返します。認証必須。
func DeleteHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		if err := service.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"code":    "ARTICLE_NOT_FOUND",
					"message": "指定された記事は存在しません",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "記事の削除に失敗しました",
			})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
