package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lymcoach/backend/internal/domain"
)

// ConversationStore persists coach question/answer turns
type ConversationStore struct {
	pool *pgxpool.Pool
}

// NewConversationStore creates a conversation repository backed by PostgreSQL
func NewConversationStore(pool *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{pool: pool}
}

// SaveTurn inserts one question/answer exchange
func (s *ConversationStore) SaveTurn(ctx context.Context, turn domain.ConversationTurn) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversations (id, user_id, question, answer, citations, passage_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		turn.ID, turn.UserID, turn.Question, turn.Answer, turn.Citations, turn.PassageIDs, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}
