package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// User-facing messages, rendered verbatim by the app
const (
	MsgProductNotFound = "Produit non trouvé"
	MsgSearchFailed    = "Erreur lors de la recherche"
)

const (
	// DefaultSearchLimit caps the merged result list when the caller passes no limit
	DefaultSearchLimit = 20

	// minQueryLen is the shortest query that triggers a network search
	minQueryLen = 2
)

// SearchState is an immutable snapshot of a session's visible state.
// Results are replaced wholesale on every accepted update, never mutated.
type SearchState struct {
	Results     []domain.Product
	Searching   bool
	LoadingMore bool
	Message     string
}

// SearchSession merges product results from the fast generic source and the
// slower branded source, progressively: generic results become visible as
// soon as they arrive, branded results are merged in afterwards.
//
// Correctness under overlapping searches relies on a single generation
// counter: each Search captures the counter value at issue time and re-checks
// it after every blocking call. A search whose snapshot no longer matches the
// live counter has been superseded and silently discards its results, so a
// slow older request can never overwrite a newer one.
type SearchSession struct {
	gateway domain.SearchGateway
	logger  *zap.Logger

	mu          sync.Mutex
	generation  uint64
	results     []domain.Product
	searching   bool
	loadingMore bool
	message     string
}

// NewSearchSession creates a session bound to one logical client (e.g. one
// open search screen). Sessions are safe for concurrent use.
func NewSearchSession(gateway domain.SearchGateway, logger *zap.Logger) *SearchSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchSession{
		gateway: gateway,
		logger:  logger,
	}
}

// State returns a snapshot of the visible state. The returned result slice
// is a copy and safe to retain.
func (s *SearchSession) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.Product, len(s.results))
	copy(results, s.results)

	return SearchState{
		Results:     results,
		Searching:   s.searching,
		LoadingMore: s.loadingMore,
		Message:     s.message,
	}
}

// Search runs one logical search and publishes its results to the session
// state. It returns when the search has settled or been superseded; results
// are delivered through State, not a return value.
//
// For SourceAll the generic source is queried first and its results shown
// immediately with LoadingMore set, then the branded source is queried and
// the merged list (complete-nutrition entries first, capped at limit)
// replaces them. Queries shorter than two characters clear the results
// without any network call.
func (s *SearchSession) Search(ctx context.Context, query string, source domain.SearchSource, limit int) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if source == "" {
		source = domain.SourceAll
	}

	s.mu.Lock()
	if utf8.RuneCountInString(query) < minQueryLen {
		// Bumping the generation here makes any in-flight search permanently
		// stale, so the cleared state cannot be repopulated later.
		s.generation++
		s.results = nil
		s.searching = false
		s.loadingMore = false
		s.message = ""
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.searching = true
	s.message = ""
	s.mu.Unlock()

	defer s.settle(gen)

	if source != domain.SourceAll {
		s.searchSingle(ctx, gen, query, source, limit)
		return
	}

	// Each source contributes up to half of the final list.
	half := (limit + 1) / 2

	primary, err := s.gateway.FetchProducts(ctx, query, domain.SourceGeneric, half)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logger.Warn("generic source failed", zap.String("query", query), zap.Error(err))
		s.results = nil
		s.message = MsgSearchFailed
		s.mu.Unlock()
		return
	}
	s.results = primary
	s.loadingMore = true
	s.mu.Unlock()

	secondary, err := s.gateway.FetchProducts(ctx, query, domain.SourceBranded, half)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if err != nil {
		// Partial generic results stay visible.
		s.logger.Warn("branded source failed", zap.String("query", query), zap.Error(err))
		s.message = MsgSearchFailed
		return
	}
	s.results = mergeByCompleteness(primary, secondary, limit)
}

// searchSingle handles the generic-only and branded-only paths
func (s *SearchSession) searchSingle(ctx context.Context, gen uint64, query string, source domain.SearchSource, limit int) {
	products, err := s.gateway.FetchProducts(ctx, query, source, limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if err != nil {
		s.logger.Warn("source failed", zap.String("source", string(source)), zap.String("query", query), zap.Error(err))
		s.results = nil
		s.message = MsgSearchFailed
		return
	}
	if len(products) > limit {
		products = products[:limit]
	}
	s.results = products
}

// settle clears the loading flags unless the search has been superseded
func (s *SearchSession) settle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.searching = false
	s.loadingMore = false
}

// ScanBarcode resolves a scanned code to a product. It is a single-shot
// lookup outside the generation mechanism: it never touches the result list,
// only the user-facing message. An unknown code yields (nil, nil) with the
// not-found message; any other failure yields (nil, err) with a generic one.
func (s *SearchSession) ScanBarcode(ctx context.Context, code string) (*domain.Product, error) {
	s.setMessage("")

	product, err := s.gateway.LookupBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.setMessage(MsgProductNotFound)
			return nil, nil
		}
		s.logger.Warn("barcode lookup failed", zap.String("code", code), zap.Error(err))
		s.setMessage(MsgSearchFailed)
		return nil, err
	}
	return product, nil
}

// Clear empties the visible results and invalidates every in-flight search,
// so nothing resolving later can repopulate the cleared state.
func (s *SearchSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.results = nil
	s.searching = false
	s.loadingMore = false
	s.message = ""
}

func (s *SearchSession) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// mergeByCompleteness concatenates primary and secondary results, moves
// entries with calorie data in front of those without, and caps the list at
// limit. The sort is stable: within each group the arrival order is kept,
// and there is no secondary key.
func mergeByCompleteness(primary, secondary []domain.Product, limit int) []domain.Product {
	merged := make([]domain.Product, 0, len(primary)+len(secondary))
	merged = append(merged, primary...)
	merged = append(merged, secondary...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].HasCalories() && !merged[j].HasCalories()
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
