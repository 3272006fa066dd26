package ratelimit

import (
	"context"
	"log"
	"time"
)

const counterKeyPrefix = "rate_limit:"

// Limiter は固定ウィンドウカウンターに基づく流入判定を行います。
type Limiter struct {
	counter Counter
	// failClosed が true の場合、ストア障害時はリクエストを遮断します。
	// 既定は可用性優先で通過させます（フェイルオープン）。
	failClosed bool
}

// NewLimiter は Limiter を作成します。
func NewLimiter(counter Counter, failClosed bool) *Limiter {
	return &Limiter{
		counter:    counter,
		failClosed: failClosed,
	}
}

// Allow は key のウィンドウ内カウントを 1 増やし、limit 以内なら true を
// 返します。ストア障害時の動作は failClosed 設定に従い、いずれの場合も
// 警告ログを出します。
func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) bool {
	count, err := l.counter.IncrWindow(ctx, counterKeyPrefix+key, window)
	if err != nil {
		if l.failClosed {
			log.Printf("WARN rate limit store error, failing closed: key=%s err=%v", key, err)
			return false
		}
		log.Printf("WARN rate limit store error, failing open: key=%s err=%v", key, err)
		return true
	}
	return count <= limit
}
