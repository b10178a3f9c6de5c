package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lymcoach/backend/internal/domain"
)

// Repository runs vector similarity search over the knowledge_chunks table.
// Embeddings are stored with pgvector; similarity is cosine (1 - distance).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a knowledge base backed by PostgreSQL
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SearchPassages returns the passages closest to the query embedding, best
// first, filtered by minimum similarity and optionally by category.
func (r *Repository) SearchPassages(ctx context.Context, embedding []float32, threshold float32, limit int, category string) ([]domain.Passage, error) {
	query := `
		SELECT id, content, source, category,
		       1 - (embedding <=> $1) AS similarity
		FROM knowledge_chunks
		WHERE embedding IS NOT NULL
		  AND ($2 = '' OR category = $2)
		  AND 1 - (embedding <=> $1) >= $3
		ORDER BY embedding <=> $1
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), category, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ID, &p.Content, &p.Source, &p.Category, &p.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read passages: %w", err)
	}

	return passages, nil
}

// Chunk is a knowledge-base row without its embedding, as consumed by the
// embedding backfill job.
type Chunk struct {
	ID      string
	Content string
}

// MissingEmbeddings returns up to limit chunks that have no embedding yet,
// starting after the given id cursor. An empty cursor starts from the top.
func (r *Repository) MissingEmbeddings(ctx context.Context, afterID string, limit int) ([]Chunk, error) {
	query := `
		SELECT id, content
		FROM knowledge_chunks
		WHERE embedding IS NULL AND id > $1
		ORDER BY id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks missing embeddings: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}

	return chunks, nil
}

// UpdateEmbedding stores the embedding for one chunk
func (r *Repository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_chunks SET embedding = $1, embedded_at = now() WHERE id = $2`,
		pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("failed to update embedding for chunk %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chunk %s not found", id)
	}
	return nil
}
