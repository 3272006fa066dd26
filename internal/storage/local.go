// Package storage はストレージ抽象化レイヤーを提供します。
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage はメディアファイルの保存先の契約です。
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// Local はローカルファイルシステムへの保存実装です。開発環境用。
type Local struct {
	baseDir string
}

// NewLocal は Local を作成します。ベースディレクトリは存在しなければ作成されます。
func NewLocal(baseDir string) (*Local, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// Save はデータを書き込みます。
func (l *Local) Save(_ context.Context, path string, data []byte) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o640)
}

// Load はデータを読み込みます。
func (l *Local) Load(_ context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Delete はファイルを削除します。存在しない場合もエラーにしません。
func (l *Local) Delete(_ context.Context, path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve はベースディレクトリ外への脱出を防ぎます。
func (l *Local) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + path)
	full := filepath.Join(l.baseDir, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(l.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path: %s", path)
	}
	return full, nil
}
