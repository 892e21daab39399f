package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig configures OpenAIClient.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
}

// OpenAIClient calls the chat completions endpoint.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	policy  retryPolicy
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		http:    httpClient,
		policy:  retryPolicy{provider: "openai", maxRetries: cfg.MaxRetries},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements TextBackend.
func (c *OpenAIClient) Generate(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", &BackendError{Provider: c.policy.provider, Err: fmt.Errorf("OPENAI_API_KEY is not set")}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", &BackendError{Provider: c.policy.provider, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	payload, err := postJSON(ctx, c.http, c.baseURL+"/chat/completions", header, body, c.policy)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", &BackendError{Provider: c.policy.provider, StatusCode: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &BackendError{Provider: c.policy.provider, StatusCode: http.StatusOK, Err: fmt.Errorf("no content in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
