// Package generate runs stored prompts against hosted language models.
// All supported providers speak the OpenAI chat-completions dialect, so a
// single client covers them with per-provider presets.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Provider is a preset for a chat-completions compatible API host.
type Provider struct {
	ID           string
	Name         string
	BaseURL      string
	DefaultModel string
}

var providers = map[string]Provider{
	"openai": {
		ID:           "openai",
		Name:         "OpenAI",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4.1",
	},
	"deepseek": {
		ID:           "deepseek",
		Name:         "DeepSeek",
		BaseURL:      "https://api.deepseek.com/v1",
		DefaultModel: "deepseek-chat",
	},
	"xai": {
		ID:           "xai",
		Name:         "xAI",
		BaseURL:      "https://api.x.ai/v1",
		DefaultModel: "grok-3",
	},
}

// Providers returns the known presets, sorted by id.
func Providers() []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChatClient implements services.TextGenerator over a chat-completions API.
type ChatClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewChatClient builds a client for the named provider. An empty model
// selects the provider default.
func NewChatClient(providerID, apiKey, model string) (*ChatClient, error) {
	p, ok := providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	if model == "" {
		model = p.DefaultModel
	}
	return &ChatClient{
		baseURL: p.BaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_completion_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the stored prompt as the system message and the test input
// as the user message, returning the first completion.
func (c *ChatClient) Generate(ctx context.Context, prompt, input string) (string, error) {
	var messages []chatMessage
	if prompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt})
	}
	if input != "" {
		messages = append(messages, chatMessage{Role: "user", Content: input})
	}
	if len(messages) == 0 {
		messages = append(messages, chatMessage{Role: "user", Content: " "})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("model api returned %s", resp.Status)
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("model api: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("model api returned %s", resp.Status)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}
