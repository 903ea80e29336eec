package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatbot-backend/internal/models"
)

type PostgresHistoryRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresHistoryRepo(pool *pgxpool.Pool) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{pool: pool}
}

func (r *PostgresHistoryRepo) Append(ctx context.Context, turn models.ConversationTurn) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO conversation_turns (user_message, assistant_message) VALUES ($1, $2)",
		turn.User, turn.Assistant,
	)
	return err
}

func (r *PostgresHistoryRepo) List(ctx context.Context) ([]models.ConversationTurn, error) {
	rows, err := r.pool.Query(ctx, "SELECT user_message, assistant_message FROM conversation_turns ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []models.ConversationTurn{}
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.User, &t.Assistant); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *PostgresHistoryRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM conversation_turns")
	return err
}
