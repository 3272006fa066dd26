// Package auth は認証機能（トークン発行・検証、セッション、ミドルウェア）を提供します。
package auth

import "github.com/gin-gonic/gin"

// ContextIdentityKey は、ハンドラー間で認証済みの呼び出し元情報を共有するためのキーです。
const ContextIdentityKey = "auth.identity"

// CallerIdentity は現在のリクエストの呼び出し元を表します。
// リクエスト処理中にのみ生成され、永続化されません。
type CallerIdentity struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// CurrentIdentity はリクエストに紐づく認証済み呼び出し元を返します。
// 未認証（匿名）の場合は ok=false を返します。
func CurrentIdentity(c *gin.Context) (CallerIdentity, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		return CallerIdentity{}, false
	}
	identity, ok := v.(CallerIdentity)
	return identity, ok
}
