package auth

import (
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Lockout はログイン試行回数を IP 単位で追跡し、連続失敗をロックします。
type Lockout struct {
	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewLockout は Lockout を作成します。
func NewLockout() *Lockout {
	return &Lockout{
		attempts: make(map[string]*attemptState),
	}
}

// CheckLock はロック中の残り時間を返します。ロックされていなければ 0 です。
func (l *Lockout) CheckLock(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.attempts[ip]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

// RecordFailure は失敗を記録し、残り試行回数を返します。
func (l *Lockout) RecordFailure(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	state, ok := l.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		l.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset は成功時に試行履歴を消去します。
func (l *Lockout) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}
