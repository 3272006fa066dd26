package media

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/aurora-blog/internal/auth"
)

// UploadHandler は POST /api/media のハンドラーを返します。認証必須。
func UploadHandler(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "file フィールドでファイルを送ってください",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ファイルの読み込みに失敗しました",
			})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ファイルの読み込みに失敗しました",
			})
			return
		}

		result, err := service.Upload(c.Request.Context(), fileHeader.Filename, data)
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) {
				status := http.StatusBadRequest
				if apiErr.Code == "LIMIT_EXCEEDED" {
					status = http.StatusRequestEntityTooLarge
				}
				c.JSON(status, gin.H{
					"code":    apiErr.Code,
					"message": apiErr.Message,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ファイルの保存に失敗しました",
			})
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}
