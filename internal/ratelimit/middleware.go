package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Rule はルート単位のレート制限設定です。
type Rule struct {
	Method        string // HTTPメソッド
	Path          string // 登録されたルートパターン（例: /api/articles/:id）
	Key           string // カウンターキー。空ならルートパターンを使用
	Limit         int64  // ウィンドウ内の許容リクエスト数
	WindowSeconds int    // ウィンドウ長（秒）
	PerClient     bool   // true なら呼び出し元アドレスごとに個別カウント
}

// Gate はすべてのルートが通る単一のレート制限地点です。
// ルールが設定されていないルートは無条件で通過します。
type Gate struct {
	limiter *Limiter
	rules   map[string]Rule
}

// NewGate は Gate を作成します。
func NewGate(limiter *Limiter, rules []Rule) *Gate {
	indexed := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		indexed[rule.Method+" "+rule.Path] = rule
	}
	return &Gate{
		limiter: limiter,
		rules:   indexed,
	}
}

// Handler はレート制限ミドルウェアを返します。
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := g.rules[c.Request.Method+" "+c.FullPath()]
		if !ok {
			c.Next()
			return
		}

		key := rule.Key
		if key == "" {
			key = rule.Path
		}
		if rule.PerClient {
			key = key + ":" + c.ClientIP()
		}

		window := time.Duration(rule.WindowSeconds) * time.Second
		if !g.limiter.Allow(c.Request.Context(), key, rule.Limit, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "リクエストが多すぎます。しばらくしてからお試しください",
			})
			return
		}
		c.Next()
	}
}
