package ai

import "time"

// Status は下書き生成ジョブの実行状態を表します。
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "done"
	StatusFailed    Status = "error"
)

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record は下書き生成ジョブの現在状態を表します。
type Record struct {
	DraftID      string     `json:"draftId"`
	Topic        string     `json:"topic"`
	Instructions string     `json:"instructions,omitempty"`
	Status       Status     `json:"status"`
	Content      string     `json:"content,omitempty"`
	Error        *ErrorInfo `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}
