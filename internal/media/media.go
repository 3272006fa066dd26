// Package media はメディアファイルのアップロード検証と保存を提供します。
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/yourusername/aurora-blog/internal/storage"
)

// allowedTypes はアップロードを許可する MIME タイプです。
// 判定は拡張子ではなく内容のスニッフィングで行います。
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Error はユーザー向けのエラーコードとメッセージを持つエラーです。
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// UploadResult は保存されたメディアのメタデータです。
type UploadResult struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	PageCount int       `json:"pageCount,omitempty"` // PDF の場合のみ
	CreatedAt time.Time `json:"createdAt"`
}

// Service はメディアの検証と保存を担います。
type Service struct {
	store   storage.Storage
	maxSize int64
}

// NewService は Service を作成します。
func NewService(store storage.Storage, maxSize int64) *Service {
	return &Service{
		store:   store,
		maxSize: maxSize,
	}
}

// Upload はファイル内容を検証して保存します。
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, newError("INVALID_INPUT", "ファイルが空です")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, newError("LIMIT_EXCEEDED", "ファイルサイズが上限を超えています")
	}

	detected := mimetype.Detect(data)
	if !allowedTypes[detected.String()] {
		return nil, newError("UNSUPPORTED_TYPE", "対応していないファイル形式です")
	}

	result := &UploadResult{
		ID:       uuid.NewString(),
		Filename: filename,
		MimeType: detected.String(),
		Size:     int64(len(data)),
	}

	// PDF は構造を検証し、ページ数をメタデータに含める
	if detected.String() == "application/pdf" {
		pages, err := inspectPDF(data)
		if err != nil {
			return nil, newError("INVALID_PDF", "PDFファイルが壊れています")
		}
		result.PageCount = pages
	}

	result.Path = result.ID + normalizeExt(filename, detected.Extension())
	if err := s.store.Save(ctx, result.Path, data); err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}
	result.CreatedAt = time.Now().UTC()
	return result, nil
}

// Load は保存済みメディアを読み出します。
func (s *Service) Load(ctx context.Context, path string) ([]byte, error) {
	return s.store.Load(ctx, path)
}

// Delete は保存済みメディアを削除します。
func (s *Service) Delete(ctx context.Context, path string) error {
	return s.store.Delete(ctx, path)
}

// inspectPDF は pdfcpu で構造検証とページ数取得を行います。
func inspectPDF(data []byte) (int, error) {
	tmp, err := os.CreateTemp("", "media-*.pdf")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := pdfapi.ValidateFile(tmp.Name(), nil); err != nil {
		return 0, err
	}
	return pdfapi.PageCountFile(tmp.Name())
}

// normalizeExt は検出された MIME タイプと整合する拡張子を返します。
func normalizeExt(filename, detectedExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == detectedExt || (ext == ".jpeg" && detectedExt == ".jpg") {
		return ext
	}
	return detectedExt
}
