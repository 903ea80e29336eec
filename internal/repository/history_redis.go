package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"chatbot-backend/internal/models"
)

const HistoryKey = "chat:history"

// RedisHistoryRepo stores turns as JSON entries of a Redis list.
type RedisHistoryRepo struct {
	redis *redis.Client
	key   string
}

func NewRedisHistoryRepo(client *redis.Client) *RedisHistoryRepo {
	return &RedisHistoryRepo{redis: client, key: HistoryKey}
}

func (r *RedisHistoryRepo) Append(ctx context.Context, turn models.ConversationTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	return r.redis.RPush(ctx, r.key, data).Err()
}

func (r *RedisHistoryRepo) List(ctx context.Context) ([]models.ConversationTurn, error) {
	raw, err := r.redis.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeTurns(raw)
}

func (r *RedisHistoryRepo) Clear(ctx context.Context) error {
	return r.redis.Del(ctx, r.key).Err()
}

func decodeTurns(raw []string) ([]models.ConversationTurn, error) {
	turns := make([]models.ConversationTurn, 0, len(raw))
	for i, item := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("corrupt history entry %d: %w", i, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
