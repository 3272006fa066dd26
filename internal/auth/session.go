package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "login_token:"

	// SessionTTL は不透明セッショントークンの有効期限です。
	SessionTTL = 24 * time.Hour
)

// KV はセッション保存に必要な最小限のキーバリュー操作です。
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get はキーが存在しない場合 ok=false を返します（エラーにはしません）。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisKV は go-redis クライアントを KV に適合させます。
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV は RedisKV を作成します。
func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.rdb.Expire(ctx, key, ttl).Err()
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// SessionStore は不透明セッショントークンを共有 KV ストアで管理します。
// トークン自体に意味はなく、識別にはサーバー側の引き当てが必要です。
type SessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewSessionStore は SessionStore を作成します。
// ttl が 0 以下の場合は既定の SessionTTL (24時間) を使用します。
func NewSessionStore(kv KV, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &SessionStore{
		kv:  kv,
		ttl: ttl,
	}
}

// TTL はセッションの有効期限を返します。クッキーの MaxAge に利用します。
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create は推測不可能なランダムトークンを生成し、呼び出し元 ID を
// 紐づけて保存します。
func (s *SessionStore) Create(ctx context.Context, callerID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, sessionKey(token), callerID, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Validate はトークンに紐づく呼び出し元 ID を返します。
// 存在しない・期限切れ・ストア障害のいずれも ok=false として扱い、
// リクエスト処理を中断させません。
func (s *SessionStore) Validate(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	callerID, ok, err := s.kv.Get(ctx, sessionKey(token))
	if err != nil {
		// ストア障害はセッションなしに格下げする
		log.Printf("WARN session lookup failed, treating as not found: %v", err)
		return "", false
	}
	return callerID, ok
}

// Refresh はトークンの有効期限を延長します。すでに消えている場合は何もしません。
func (s *SessionStore) Refresh(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Expire(ctx, sessionKey(token), s.ttl)
}

// Revoke はトークンを削除します。冪等です。
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Del(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
