// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/aurora-blog/internal/article"
	"github.com/yourusername/aurora-blog/internal/auth"
	"github.com/yourusername/aurora-blog/internal/config"
	"github.com/yourusername/aurora-blog/internal/media"
	"github.com/yourusername/aurora-blog/internal/passcrypt"
	"github.com/yourusername/aurora-blog/internal/ratelimit"
	"github.com/yourusername/aurora-blog/internal/storage"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// セッション・レート制限用のRedisクライアント
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)

	// 認証コンポーネントの組み立て
	bridge := passcrypt.New(cfg.CryptoPassphrase)
	codec := auth.NewCodec(cfg.AppSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute)
	sessions := auth.NewSessionStore(auth.NewRedisKV(rdb), time.Duration(cfg.RefreshTokenTTLHours)*time.Hour)
	authManager := auth.NewManager(cfg, bridge, codec, sessions)

	// レート制限: 全ルートが通る単一の流入制御地点
	limiter := ratelimit.NewLimiter(ratelimit.NewRedisCounter(rdb), cfg.RateLimitFailClosed)
	gate := ratelimit.NewGate(limiter, rateLimitRules())

	// すべてのリクエストで識別情報の確立 → 流入判定の順に通す
	router.Use(auth.Middleware(codec))
	router.Use(gate.Handler())

	// メディアストレージ
	localStore, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	mediaService := media.NewService(localStore, cfg.MaxUploadSize)

	// AI下書き生成ジョブ
	aiManager, err := setupAI(cfg)
	if err != nil {
		log.Fatalf("Failed to init AI jobs: %v", err)
	}
	aiManager.StartWorkers()

	// ルーティングの設定
	setupRoutes(router, authManager, article.NewMemoryService(), mediaService, aiManager)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "aurora-blog-api",
		"version": "0.1.0",
	})
}

// rateLimitRules はルート単位のレート制限設定を返します。
func rateLimitRules() []ratelimit.Rule {
	return []ratelimit.Rule{
		// ログインは呼び出し元アドレスごとに制限する
		{Method: http.MethodPost, Path: "/api/auth/login", Limit: 10, WindowSeconds: 60, PerClient: true},
		{Method: http.MethodPost, Path: "/api/auth/refresh", Limit: 30, WindowSeconds: 60, PerClient: true},
		// AI生成は高コストなので厳しめに絞る
		{Method: http.MethodPost, Path: "/api/ai/drafts", Limit: 5, WindowSeconds: 60, PerClient: true},
		{Method: http.MethodPost, Path: "/api/media", Limit: 20, WindowSeconds: 60, PerClient: true},
		// 書き込み系はルート全体で共有カウント
		{Method: http.MethodPost, Path: "/api/articles", Limit: 30, WindowSeconds: 60},
		{Method: http.MethodPut, Path: "/api/articles/:id", Limit: 30, WindowSeconds: 60},
	}
}
