package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/aurora-blog/internal/config"
	"github.com/yourusername/aurora-blog/internal/passcrypt"
)

const (
	// AccessTokenCookie / RefreshTokenCookie はフロントエンドと共有する
	// 固定のクッキー名です。
	AccessTokenCookie  = "ab_access_token"
	RefreshTokenCookie = "ab_refresh_token"

	// adminUserID は環境変数でシードされる管理者ユーザーの ID です。
	// ユーザー永続化は外部コラボレーターの責務です。
	adminUserID = int64(1)
	adminRole   = "admin"
)

// Manager はログイン・リフレッシュ・ログアウトの各ハンドラーをまとめた構造体です。
type Manager struct {
	cfg      *config.Config
	bridge   *passcrypt.Bridge
	codec    *Codec
	sessions *SessionStore
	lockout  *Lockout
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, bridge *passcrypt.Bridge, codec *Codec, sessions *SessionStore) *Manager {
	return &Manager{
		cfg:      cfg,
		bridge:   bridge,
		codec:    codec,
		sessions: sessions,
		lockout:  NewLockout(),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	// Password はフロントエンドの暗号化ライブラリで暗号化された base64 ペイロードです。
	Password string `json:"password" binding:"required"`
}

// Login は /api/auth/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	if err := m.ensureCredentials(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SERVER_MISCONFIGURATION",
			"message": err.Error(),
		})
		return
	}

	ip := c.ClientIP()
	if retryAfter := m.lockout.CheckLock(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください",
		})
		return
	}

	// フロントエンドで暗号化されたパスワードを復号してから照合する
	password, err := m.bridge.Decrypt(req.Password)
	if err != nil {
		remaining := m.lockout.RecordFailure(ip)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":              "CRYPTO_FAILURE",
			"message":           "パスワードを処理できませんでした。もう一度お試しください",
			"remainingAttempts": remaining,
		})
		return
	}

	if req.Username != m.cfg.AdminUsername || !m.verifyPassword(password) {
		remaining := m.lockout.RecordFailure(ip)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":              "INVALID_CREDENTIALS",
			"message":           "ユーザー名またはパスワードが正しくありません",
			"remainingAttempts": remaining,
		})
		return
	}

	m.lockout.Reset(ip)

	accessToken, err := m.codec.Issue(adminUserID, req.Username, adminRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "トークンの発行に失敗しました",
		})
		return
	}

	// 不透明セッションはリフレッシュの失効アンカーを兼ねる
	refreshToken, err := m.sessions.Create(c.Request.Context(), strconv.FormatInt(adminUserID, 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	m.setTokenCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"expiresIn":    m.cfg.AccessTokenTTLMinutes * 60,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh は /api/auth/refresh のハンドラーです。
// 不透明セッションを検証・延長し、新しいアクセストークンを発行します。
func (m *Manager) Refresh(c *gin.Context) {
	token := m.refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "SESSION_NOT_FOUND",
			"message": "再度ログインしてください",
		})
		return
	}

	callerID, ok := m.sessions.Validate(c.Request.Context(), token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "SESSION_NOT_FOUND",
			"message": "再度ログインしてください",
		})
		return
	}

	id, err := strconv.ParseInt(callerID, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "SESSION_NOT_FOUND",
			"message": "再度ログインしてください",
		})
		return
	}

	// 延長失敗は致命的ではないので続行する
	_ = m.sessions.Refresh(c.Request.Context(), token)

	accessToken, err := m.codec.Issue(id, m.cfg.AdminUsername, adminRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "トークンの発行に失敗しました",
		})
		return
	}

	m.setTokenCookies(c, accessToken, token)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   m.cfg.AccessTokenTTLMinutes * 60,
	})
}

// Logout は /api/auth/logout のハンドラーです。
// 不透明セッションを破棄してリフレッシュを即時に失効させます。
// アクセストークンは短い有効期限で自然失効します。
func (m *Manager) Logout(c *gin.Context) {
	token := m.refreshTokenFrom(c)
	if token != "" {
		if err := m.sessions.Revoke(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "SESSION_SAVE_FAILED",
				"message": "セッションの削除に失敗しました",
			})
			return
		}
	}

	m.clearTokenCookies(c)
	c.Status(http.StatusNoContent)
}

func (m *Manager) ensureCredentials() error {
	if m.cfg.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME が設定されていません")
	}
	if m.cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD_HASH が設定されていません")
	}
	if m.cfg.AppSecret == "" {
		return errors.New("APP_SECRET が設定されていません")
	}
	return nil
}

func (m *Manager) verifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.cfg.AdminPassword), []byte(password)) == nil
}

// refreshTokenFrom はリクエストボディまたはクッキーからリフレッシュトークンを取り出します。
func (m *Manager) refreshTokenFrom(c *gin.Context) string {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	token, err := c.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func (m *Manager) setTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	secure := m.cfg.GinMode == gin.ReleaseMode
	c.SetCookie(AccessTokenCookie, accessToken, m.cfg.AccessTokenTTLMinutes*60, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(m.sessions.TTL().Seconds()), "/", "", secure, true)
}

func (m *Manager) clearTokenCookies(c *gin.Context) {
	secure := m.cfg.GinMode == gin.ReleaseMode
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
