// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 認証設定
	AppSecret        string // アクセストークン署名用の秘密鍵
	CryptoPassphrase string // フロントエンド暗号化パスワードの共有パスフレーズ
	AdminUsername    string // 管理者ユーザー名
	AdminPassword    string // bcryptでハッシュ化された管理者パスワード

	// トークン有効期限
	AccessTokenTTLMinutes int // アクセストークンの有効期限（分）
	RefreshTokenTTLHours  int // リフレッシュトークンの有効期限（時間）

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// Redis設定
	RedisURL      string // セッション・レート制限用Redis接続URL
	QueueRedisURL string // Asynq用Redis接続URL

	// レート制限設定
	RateLimitFailClosed bool // ストア障害時に遮断する場合は true（既定は通過）

	// メディア設定
	UploadDir     string // アップロードファイルの保存先ディレクトリ
	MaxUploadSize int64  // 単一ファイルの最大サイズ（バイト）

	// AI設定
	AIAPIBase          string // チャット補完APIのベースURL
	AIAPIKey           string // チャット補完APIのキー
	AIModel            string // 使用するモデル名
	DraftExpireMinutes int    // 下書き生成ジョブの有効期限（分）
}

// defaultPassphrase はフロントエンドの暗号化実装と共有する既定のパスフレーズです。
// 変更すると送信途中の暗号化ペイロードがすべて復号できなくなります。
const defaultPassphrase = "aurora-blog-secret-salt"

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// 認証設定
		AppSecret:        getEnv("APP_SECRET", ""),
		CryptoPassphrase: getEnv("CRYPTO_PASSPHRASE", defaultPassphrase),
		AdminUsername:    getEnv("ADMIN_USERNAME", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD_HASH", ""),

		// トークン有効期限
		AccessTokenTTLMinutes: getEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60),
		RefreshTokenTTLHours:  getEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 24),

		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// Redis設定
		RedisURL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		QueueRedisURL: getEnv("QUEUE_REDIS_URL", "redis://127.0.0.1:6379/1"),

		// レート制限設定
		RateLimitFailClosed: getEnvAsBool("RATE_LIMIT_FAIL_CLOSED", false),

		// メディア設定
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10485760), // 10MB

		// AI設定
		AIAPIBase:          getEnv("AI_API_BASE", "https://api.openai.com/v1"),
		AIAPIKey:           getEnv("AI_API_KEY", ""),
		AIModel:            getEnv("AI_MODEL", "gpt-4o-mini"),
		DraftExpireMinutes: getEnvAsInt("DRAFT_EXPIRE_MINUTES", 30),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では認証設定は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.AppSecret == "" {
			return fmt.Errorf("APP_SECRET is required in release mode")
		}
		if c.AdminUsername == "" {
			return fmt.Errorf("ADMIN_USERNAME is required in release mode")
		}
		if c.AdminPassword == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is required in release mode")
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
