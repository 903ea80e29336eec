package models

import (
	"encoding/json"
	"errors"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// UnmarshalJSON requires both fields to be present. An empty string is
// accepted, a missing key is not.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    *string `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Role == nil {
		return errors.New("history entry is missing role")
	}
	if raw.Content == nil {
		return errors.New("history entry is missing content")
	}
	m.Role = *raw.Role
	m.Content = *raw.Content
	return nil
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty"`
}

// ConversationTurn is one recorded exchange. It doubles as the /chat response.
type ConversationTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type HistoryResponse struct {
	History []ConversationTurn `json:"history"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
