package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/yourusername/aurora-blog/internal/config"
)

const taskTypeDraft = "ai:draft"

// Manager は下書き生成ジョブの投入と状態管理を担います。
type Manager struct {
	cfg      *config.Config
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    *Store
	provider Provider
	logger   *log.Logger
}

// TaskPayload は下書き生成ジョブのペイロードです。
type TaskPayload struct {
	DraftID      string `json:"draftId"`
	Topic        string `json:"topic"`
	Instructions string `json:"instructions,omitempty"`
}

// NewManager は Manager を初期化します。
func NewManager(cfg *config.Config, provider Provider, store *Store, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if provider == nil {
		return nil, errors.New("provider is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.QueueRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"ai": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		cfg:      cfg,
		client:   client,
		server:   server,
		mux:      mux,
		store:    store,
		provider: provider,
		logger:   logger,
	}
	mux.HandleFunc(taskTypeDraft, manager.handleDraftTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			if m.logger != nil {
				m.logger.Printf("asynq server stopped with error: %v", err)
			} else {
				log.Printf("asynq server stopped with error: %v", err)
			}
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// Enqueue はジョブをキューに投入します。
func (m *Manager) Enqueue(ctx context.Context, payload *TaskPayload) error {
	if payload == nil {
		return fmt.Errorf("payload is nil")
	}
	if payload.DraftID == "" {
		return fmt.Errorf("payload.DraftID is required")
	}

	record := &Record{
		DraftID:      payload.DraftID,
		Topic:        payload.Topic,
		Instructions: payload.Instructions,
		Status:       StatusQueued,
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskTypeDraft, body, asynq.Queue("ai"))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1)); err != nil {
		return err
	}
	return nil
}

// GetRecord はジョブ情報を取得します。
func (m *Manager) GetRecord(ctx context.Context, draftID string) (*Record, error) {
	return m.store.Get(ctx, draftID)
}

func (m *Manager) handleDraftTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.DraftID == "" {
		return fmt.Errorf("missing draftId in payload")
	}

	if err := m.store.Upsert(ctx, &Record{
		DraftID:      payload.DraftID,
		Topic:        payload.Topic,
		Instructions: payload.Instructions,
		Status:       StatusRunning,
	}); err != nil {
		return err
	}

	content, err := m.provider.GenerateDraft(ctx, payload.Topic, payload.Instructions)
	if err != nil {
		if m.logger != nil {
			m.logger.Printf("draft generation failed draft=%s: %v", payload.DraftID, err)
		}
		return m.store.MarkFailed(ctx, payload.DraftID, &ErrorInfo{
			Code:    "GENERATION_FAILED",
			Message: "下書きの生成に失敗しました",
		})
	}
	return m.store.MarkDone(ctx, payload.DraftID, content)
}
