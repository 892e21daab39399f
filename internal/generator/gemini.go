package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const structuredMimeType = "application/json"

// GeminiConfig configures GeminiClient.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
}

// GeminiClient calls the generateContent endpoint with a response schema
// describing the card object.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	policy  retryPolicy
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		http:    httpClient,
		policy:  retryPolicy{provider: "gemini", maxRetries: cfg.MaxRetries},
	}
}

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
	MaxOutputTokens  int           `json:"maxOutputTokens,omitempty"`
	Temperature      float64       `json:"temperature"`
}

// GeminiSchema is the subset of the OpenAPI schema used for structured output.
type GeminiSchema struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Properties  map[string]*GeminiSchema `json:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// CardSchema describes the object the model is asked to return.
var CardSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"title": {
			Type:        "STRING",
			Description: "Short motivating title, at most a few words.",
		},
		"description": {
			Type:        "STRING",
			Description: "One or two sentences describing the exercise.",
		},
		"duration": {
			Type:        "INTEGER",
			Description: "Suggested exercise length in seconds.",
		},
	},
	Required: []string{"title", "description"},
}

// Generate implements TextBackend.
func (c *GeminiClient) Generate(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", &BackendError{Provider: c.policy.provider, Err: fmt.Errorf("GEMINI_API_KEY is not set")}
	}

	payload := GeminiPayload{
		SystemInstruction: &GeminiContent{
			Parts: []GeminiPart{{Text: system}},
		},
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: user}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   CardSchema,
			MaxOutputTokens:  maxTokens,
			Temperature:      temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &BackendError{Provider: c.policy.provider, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	raw, err := postJSON(ctx, c.http, endpoint, nil, body, c.policy)
	if err != nil {
		return "", err
	}

	var resp GeminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &BackendError{Provider: c.policy.provider, StatusCode: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &BackendError{Provider: c.policy.provider, StatusCode: http.StatusOK, Err: fmt.Errorf("no content found in Gemini response")}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
