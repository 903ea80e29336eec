package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const GeminiModel = "gemini-2.5-pro"

// GeminiService is the Completer backed by the Gemini API. The client is
// created on the first call so a missing key only surfaces when chatting.
type GeminiService struct {
	apiKey string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{apiKey: apiKey}
}

func (s *GeminiService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

func (s *GeminiService) getClient() (*genai.Client, error) {
	if s.apiKey == "" {
		return nil, &ConfigurationError{Message: "GEMINI_API_KEY not found in environment variables"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, &ProviderError{Err: fmt.Errorf("failed to create Gemini client: %w", err)}
	}
	s.client = client
	return client, nil
}

func (s *GeminiService) Complete(ctx context.Context, messages []Message) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	system, history, last := splitForGemini(messages)
	if last == "" {
		return "", &ProviderError{Err: fmt.Errorf("no user message to send")}
	}

	model := client.GenerativeModel(GeminiModel)
	model.SetTemperature(Temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("Gemini API error: %w", err)}
	}

	text := extractText(resp)
	if text == "" {
		return "", &ProviderError{Err: fmt.Errorf("Gemini returned empty text")}
	}
	return text, nil
}

// splitForGemini folds system messages into one instruction, turns the
// remaining messages except the last into chat history and returns the last
// one as the text to send.
func splitForGemini(messages []Message) (system string, history []*genai.Content, last string) {
	var sys []string
	var turns []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 {
		return strings.Join(sys, "\n\n"), nil, ""
	}

	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	return strings.Join(sys, "\n\n"), history, turns[len(turns)-1].Content
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
