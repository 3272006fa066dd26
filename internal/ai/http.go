package ai

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/aurora-blog/internal/auth"
)

type draftRequest struct {
	Topic        string `json:"topic" binding:"required"`
	Instructions string `json:"instructions"`
}

// RequestHandler は POST /api/ai/drafts のハンドラーを返します。認証必須。
func RequestHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		var req draftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "topic を JSON で送ってください",
			})
			return
		}

		draftID := uuid.NewString()
		err := manager.Enqueue(c.Request.Context(), &TaskPayload{
			DraftID:      draftID,
			Topic:        req.Topic,
			Instructions: req.Instructions,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブの投入に失敗しました",
			})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"draftId": draftID,
			"status":  StatusQueued,
		})
	}
}

// StatusHandler は GET /api/ai/drafts/:id のハンドラーを返します。認証必須。
func StatusHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		draftID := c.Param("id")
		if strings.TrimSpace(draftID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "draftId を指定してください",
			})
			return
		}

		record, err := manager.GetRecord(c.Request.Context(), draftID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ情報の取得に失敗しました",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "DRAFT_NOT_FOUND",
				"message": "指定された下書きは存在しません",
			})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}
