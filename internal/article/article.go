// Package article は記事 CRUD の薄い HTTP グルーです。
// 永続化スキーマは外部コラボレーターの責務で、ここでは
// リクエスト/レスポンス契約のみを扱います。
package article

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound は記事が存在しないことを示します。
var ErrNotFound = errors.New("article: not found")

// Article は公開記事を表します。
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service は記事操作の契約です。
type Service interface {
	List(ctx context.Context) ([]*Article, error)
	Get(ctx context.Context, id string) (*Article, error)
	Create(ctx context.Context, article *Article) error
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id string) error
}

// MemoryService はインメモリの Service 実装です。
// 本来の永続化レイヤーの差し込み口として機能します。
type MemoryService struct {
	mu       sync.RWMutex
	articles map[string]*Article
}

// NewMemoryService は MemoryService を作成します。
func NewMemoryService() *MemoryService {
	return &MemoryService{
		articles: make(map[string]*Article),
	}
}

// List は作成日時の降順で全記事を返します。
func (s *MemoryService) List(_ context.Context) ([]*Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Article, 0, len(s.articles))
	for _, a := range s.articles {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get は指定 ID の記事を返します。
func (s *MemoryService) Get(_ context.Context, id string) (*Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// Create は記事を保存します。
func (s *MemoryService) Create(_ context.Context, article *Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	copied := *article
	s.articles[article.ID] = &copied
	return nil
}

// Update は既存記事を更新します。
func (s *MemoryService) Update(_ context.Context, article *Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.articles[article.ID]
	if !ok {
		return ErrNotFound
	}
	article.CreatedAt = existing.CreatedAt
	article.AuthorID = existing.AuthorID
	article.UpdatedAt = time.Now().UTC()
	copied := *article
	s.articles[article.ID] = &copied
	return nil
}

// Delete は記事を削除します。
func (s *MemoryService) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return ErrNotFound
	}
	delete(s.articles, id)
	return nil
}
