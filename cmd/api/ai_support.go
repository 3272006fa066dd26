package main

import (
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/aurora-blog/internal/ai"
	"github.com/yourusername/aurora-blog/internal/config"
)

// setupAI は下書き生成ジョブのストアとマネージャーを組み立てます。
func setupAI(cfg *config.Config) (*ai.Manager, error) {
	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)
	ttlMinutes := cfg.DraftExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	store := ai.NewStore(redisClient, time.Duration(ttlMinutes)*time.Minute)

	provider := ai.NewChatProvider(cfg.AIAPIBase, cfg.AIAPIKey, cfg.AIModel)
	manager, err := ai.NewManager(cfg, provider, store, log.Default())
	if err != nil {
		return nil, err
	}
	return manager, nil
}
