package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chatbot-backend/internal/models"
)

// HistoryStore is the append-only timeline of recorded turns.
type HistoryStore interface {
	Append(ctx context.Context, turn models.ConversationTurn) error
	List(ctx context.Context) ([]models.ConversationTurn, error)
	Clear(ctx context.Context) error
}

// EventPublisher receives an event after the history changes.
type EventPublisher interface {
	Publish(ctx context.Context, msg models.WSMessage)
}

// recordTimeout bounds the append and publish that follow a reply. It is
// separate from the provider deadline, which the call may have used up.
const recordTimeout = 5 * time.Second

type ChatService struct {
	completer Completer
	history   HistoryStore
	events    EventPublisher
	timeout   time.Duration
	rateChan  chan struct{} // Token bucket
}

// NewChatService wires the provider and the store. events may be nil.
func NewChatService(completer Completer, history HistoryStore, events EventPublisher, timeout time.Duration, concurrentReqs int) *ChatService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	// Token bucket for provider calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &ChatService{
		completer: completer,
		history:   history,
		events:    events,
		timeout:   timeout,
		rateChan:  rateChan,
	}
}

// acquireRate blocks until a provider slot is available
func (s *ChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for provider slot: %w", ctx.Err())
	}
}

func (s *ChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Chat sends the message with its replayed history to the provider and
// records the exchange. Nothing is recorded when any step fails.
func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (*models.ConversationTurn, error) {
	if req.Message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	messages := BuildMessages(req.Message, req.ConversationHistory)

	// The provider call outlives a disconnected client; only the timeout stops it.
	callCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, s.timeout)
		defer cancel()
	}

	reply, err := s.complete(callCtx, messages)
	if err != nil {
		log.Printf("Chat completion failed: %v", err)
		return nil, err
	}

	recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancelRecord()

	turn := models.ConversationTurn{User: req.Message, Assistant: reply}
	if err := s.history.Append(recordCtx, turn); err != nil {
		return nil, fmt.Errorf("failed to record conversation turn: %w", err)
	}

	if s.events != nil {
		s.events.Publish(recordCtx, models.WSMessage{Type: models.EventTurnRecorded, Payload: turn})
	}

	return &turn, nil
}

func (s *ChatService) complete(ctx context.Context, messages []Message) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", &ProviderError{Err: err}
	}
	defer s.releaseRate()

	reply, err := s.completer.Complete(ctx, messages)
	if err == nil {
		return reply, nil
	}

	var cfgErr *ConfigurationError
	var provErr *ProviderError
	if errors.As(err, &cfgErr) {
		return "", cfgErr
	}
	if errors.As(err, &provErr) {
		return "", provErr
	}
	return "", &ProviderError{Err: err}
}

// History returns every recorded turn in insertion order.
func (s *ChatService) History(ctx context.Context) ([]models.ConversationTurn, error) {
	turns, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	return turns, nil
}

// Clear wipes the whole history.
func (s *ChatService) Clear(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(ctx, models.WSMessage{Type: models.EventHistoryCleared})
	}
	return nil
}
