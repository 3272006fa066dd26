package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider は下書き生成のための外部チャット補完プロバイダーの契約です。
type Provider interface {
	GenerateDraft(ctx context.Context, topic, instructions string) (string, error)
}

// ChatProvider は OpenAI 互換のチャット補完 API を呼び出す Provider 実装です。
type ChatProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewChatProvider は ChatProvider を作成します。
func NewChatProvider(baseURL, apiKey, model string) *ChatProvider {
	return &ChatProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a writing assistant for a blog platform. " +
	"Write a well-structured draft in Markdown for the given topic."

// GenerateDraft はチャット補完 API で下書きを生成します。
func (p *ChatProvider) GenerateDraft(ctx context.Context, topic, instructions string) (string, error) {
	userPrompt := "Topic: " + topic
	if instructions != "" {
		userPrompt += "\nInstructions: " + instructions
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
