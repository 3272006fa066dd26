// Package ratelimit は共有ストア上の固定ウィンドウカウンターによる
// リクエスト流入制御を提供します。
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter は固定ウィンドウカウンターのストア側の契約です。
//
// IncrWindow はキーを 1 増加させ、増加後の値が 1 のとき（この呼び出しが
// カウンターを新規作成したとき）だけ有効期限をウィンドウ長に設定します。
// この一連の操作は同一キーへの並行呼び出しに対して不可分でなければ
// なりません。既存ウィンドウ内の増加で有効期限を再設定してはいけません。
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounter はプロセス内の固定ウィンドウカウンターです。
// Redis を使わない開発環境向けで、単一プロセスでのみ正しく動作します。
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryCounter は MemoryCounter を作成します。
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*memoryWindow),
	}
}

// IncrWindow は Counter の契約を満たします。ロック内で完結するため不可分です。
func (m *MemoryCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok || now.After(w.expiresAt) {
		// 新規ウィンドウへの遷移時だけ有効期限を設定する
		w = &memoryWindow{
			count:     1,
			expiresAt: now.Add(window),
		}
		m.windows[key] = w
		return 1, nil
	}

	w.count++
	return w.count, nil
}
