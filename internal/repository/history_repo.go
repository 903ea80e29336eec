package repository

import (
	"context"
	"sync"

	"chatbot-backend/internal/models"
)

// MemoryHistoryRepo keeps the timeline in process memory. It starts empty and
// is lost on restart.
type MemoryHistoryRepo struct {
	mu    sync.Mutex
	turns []models.ConversationTurn
}

func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{}
}

func (r *MemoryHistoryRepo) Append(ctx context.Context, turn models.ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

func (r *MemoryHistoryRepo) List(ctx context.Context) ([]models.ConversationTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ConversationTurn, len(r.turns))
	copy(out, r.turns)
	return out, nil
}

func (r *MemoryHistoryRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = nil
	return nil
}
