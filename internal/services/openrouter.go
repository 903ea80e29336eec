package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const OpenRouterModel = "google/gemini-2.5-pro"

// OpenRouterService talks to an OpenAI-compatible chat completions endpoint.
type OpenRouterService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouterService(apiKey, baseURL string, timeout time.Duration) *OpenRouterService {
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *OpenRouterService) Complete(ctx context.Context, messages []Message) (string, error) {
	if s.apiKey == "" {
		return "", &ConfigurationError{Message: "OPENROUTER_API_KEY not found in environment variables"}
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       OpenRouterModel,
		Messages:    messages,
		Temperature: Temperature,
	})
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("failed to marshal openrouter request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("failed to create openrouter request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("openrouter request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("failed reading openrouter response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{Err: fmt.Errorf("openrouter status=%d body=%s", resp.StatusCode, truncate(string(raw), 400))}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ProviderError{Err: fmt.Errorf("failed to parse openrouter response: %s", truncate(string(raw), 400))}
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", &ProviderError{Err: fmt.Errorf("openrouter error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Err: fmt.Errorf("openrouter returned no choices")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
