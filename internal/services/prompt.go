package services

import (
	"log"

	"chatbot-backend/internal/models"
)

const SystemPrompt = "You are a concise AI assistant. Always respond in 1-2 sentences unless the user asks for detailed explanations. Avoid long greetings, avoid unnecessary elaboration, and keep responses short and to the point."

// BuildMessages returns the system prompt, then the replayed history, then the
// new user message. History entries whose role is neither "user" nor
// "assistant" are skipped.
func BuildMessages(message string, history []models.ChatMessage) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt})

	for _, msg := range history {
		switch Role(msg.Role) {
		case RoleUser:
			messages = append(messages, Message{Role: RoleUser, Content: msg.Content})
		case RoleAssistant:
			messages = append(messages, Message{Role: RoleAssistant, Content: msg.Content})
		default:
			log.Printf("Skipping history entry with unsupported role %q", msg.Role)
		}
	}

	return append(messages, Message{Role: RoleUser, Content: message})
}
