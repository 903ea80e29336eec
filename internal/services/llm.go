package services

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Temperature is the sampling temperature for every provider.
const Temperature = 0.7

// Message is one role-tagged entry of the list sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer sends an assembled message list to a text-generation provider and
// returns the single assistant reply. Implementations return
// *ConfigurationError when credentials are missing and *ProviderError for
// everything else.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
