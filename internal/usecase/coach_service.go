package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// citationRegex matches [source_id] references in a generated answer
var citationRegex = regexp.MustCompile(`\[([A-Za-z0-9_-]+)\]`)

// CoachConfig holds configuration for the coach service
type CoachConfig struct {
	// SimilarityThreshold is the minimum cosine similarity for a passage to
	// count as evidence. Below it the answer is flagged out of scope.
	SimilarityThreshold float32
	// RetrievalLimit caps the number of passages fed to the prompt
	RetrievalLimit int
}

// AskRequest is one coach question with optional personalization
type AskRequest struct {
	UserID   string             `json:"userId"`
	Question string             `json:"question"`
	Category string             `json:"category,omitempty"`
	Context  domain.UserContext `json:"context,omitempty"`
}

// CoachService answers free-form nutrition and wellness questions grounded
// on the knowledge base. Flow: embed -> retrieve -> prompt -> complete ->
// extract citations -> persist.
type CoachService struct {
	embedder      domain.Embedder
	knowledge     domain.KnowledgeBase
	completer     domain.ChatCompleter
	conversations domain.ConversationRepository
	logger        *zap.Logger
	config        CoachConfig
}

// NewCoachService creates a coach service with dependencies
func NewCoachService(
	embedder domain.Embedder,
	knowledge domain.KnowledgeBase,
	completer domain.ChatCompleter,
	conversations domain.ConversationRepository,
	logger *zap.Logger,
	config CoachConfig,
) *CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SimilarityThreshold == 0 {
		config.SimilarityThreshold = 0.45
	}
	if config.RetrievalLimit <= 0 {
		config.RetrievalLimit = 5
	}
	return &CoachService{
		embedder:      embedder,
		knowledge:     knowledge,
		completer:     completer,
		conversations: conversations,
		logger:        logger,
		config:        config,
	}
}

// Ask answers one coach question. An answer is produced even when retrieval
// finds no passage above the threshold; the result is then flagged
// OutOfScope and carries no citations.
func (s *CoachService) Ask(ctx context.Context, req AskRequest) (*domain.CoachAnswer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.ErrInvalidRequest
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	passages, err := s.knowledge.SearchPassages(ctx, embedding, s.config.SimilarityThreshold, s.config.RetrievalLimit, req.Category)
	if err != nil {
		return nil, err
	}

	system, prompt := BuildCoachPrompt(question, passages, req.Context)

	answer, err := s.completer.Complete(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	citations := extractCitations(answer, passages)

	result := &domain.CoachAnswer{
		ConversationID: uuid.New(),
		Answer:         answer,
		Citations:      citations,
		Passages:       passages,
		OutOfScope:     len(passages) == 0,
	}

	// Persistence is best effort: a storage hiccup must not lose the answer.
	turn := domain.ConversationTurn{
		ID:         result.ConversationID,
		UserID:     req.UserID,
		Question:   question,
		Answer:     answer,
		Citations:  citations,
		PassageIDs: passageIDs(passages),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.conversations.SaveTurn(ctx, turn); err != nil {
		s.logger.Warn("failed to persist conversation turn",
			zap.String("conversationId", result.ConversationID.String()),
			zap.Error(err))
	}

	return result, nil
}

// extractCitations pulls the [source_id] references out of the answer,
// keeping only ids of passages that were actually retrieved, in order of
// first appearance.
func extractCitations(answer string, passages []domain.Passage) []string {
	known := make(map[string]bool, len(passages))
	for _, p := range passages {
		known[p.ID] = true
	}

	var citations []string
	seen := make(map[string]bool)
	for _, match := range citationRegex.FindAllStringSubmatch(answer, -1) {
		id := match[1]
		if known[id] && !seen[id] {
			seen[id] = true
			citations = append(citations, id)
		}
	}
	return citations
}

func passageIDs(passages []domain.Passage) []string {
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.ID
	}
	return ids
}
