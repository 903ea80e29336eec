package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"chatbot-backend/internal/models"
)

func TestGeminiService_MissingKey(t *testing.T) {
	svc := NewGeminiService("")
	defer svc.Close()

	_, err := svc.Complete(context.Background(), BuildMessages("Hi", nil))

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestSplitForGemini(t *testing.T) {
	messages := BuildMessages("third", []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
	})

	system, history, last := splitForGemini(messages)

	if system != SystemPrompt {
		t.Fatalf("expected system prompt as instruction, got %q", system)
	}
	if last != "third" {
		t.Fatalf("expected last message 'third', got %q", last)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Fatalf("unexpected roles: %q, %q", history[0].Role, history[1].Role)
	}
	if text, ok := history[1].Parts[0].(genai.Text); !ok || string(text) != "second" {
		t.Fatalf("unexpected history content: %#v", history[1].Parts)
	}
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello"), genai.Text(" there")}}},
		},
	}

	if got := extractText(resp); got != "Hello there" {
		t.Fatalf("expected 'Hello there', got %q", got)
	}
	if got := extractText(nil); got != "" {
		t.Fatalf("expected empty text for nil response, got %q", got)
	}
}
