package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// Middleware は Authorization ヘッダーのベアラートークンを検証し、
// 呼び出し元情報をリクエストコンテキストに設定するミドルウェアを返します。
//
// ヘッダーがない場合や検証に失敗した場合は匿名のまま通します。
// 認証失敗はそれ自体アクセス拒否の理由にはならず、保護ルートの拒否は
// 下流の認可層の責務です。
func Middleware(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		claims, err := codec.Verify(token)
		if err != nil {
			// 無効なトークンは匿名に格下げして続行する
			c.Next()
			return
		}

		identity, err := codec.Identity(claims)
		if err != nil {
			c.Next()
			return
		}

		// 同一リクエスト内で二度実行されても既存の識別情報は上書きしない
		if _, exists := c.Get(ContextIdentityKey); !exists {
			c.Set(ContextIdentityKey, identity)
		}
		c.Next()
	}
}

// RequireIdentity は認証済みの呼び出し元のみ通すミドルウェアを返します。
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}
		c.Next()
	}
}

func extractBearer(header string) string {
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
