package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript は INCR と初回のみの EXPIRE を一つの不可分な操作に
// まとめます。読み取り→書き込みの分割実装はカウント漏れや有効期限の
// 設定漏れを起こすため使用できません。
var incrWindowScript = redis.NewScript(`
local value = redis.call("INCR", KEYS[1])
if value == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return value
`)

// RedisCounter は Redis 上の固定ウィンドウカウンターです。
// 複数プロセス間でカウンターを共有できます。
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter は RedisCounter を作成します。
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

// IncrWindow は Counter の契約を満たします。Lua スクリプトとして
// サーバー側で一括実行されるため、並行呼び出しに対して不可分です。
func (r *RedisCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int64(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return incrWindowScript.Run(ctx, r.rdb, []string{key}, seconds).Int64()
}
