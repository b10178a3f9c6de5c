package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lymcoach/backend/internal/domain"
)

type gatewayCall struct {
	Query  string
	Source domain.SearchSource
	Limit  int
}

// scriptedGateway is a SearchGateway whose behavior is driven by closures,
// so tests can block individual requests and control interleaving.
type scriptedGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	fetch   func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error)
	barcode func(ctx context.Context, code string) (*domain.Product, error)
}

func (g *scriptedGateway) FetchProducts(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{Query: query, Source: source, Limit: limit})
	g.mu.Unlock()
	return g.fetch(ctx, query, source, limit)
}

func (g *scriptedGateway) LookupBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return g.barcode(ctx, code)
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *scriptedGateway) recordedCalls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	calls := make([]gatewayCall, len(g.calls))
	copy(calls, g.calls)
	return calls
}

// product builds a test product; kcal == 0 models incomplete nutrition data
func product(id string, kcal float64) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      id,
		Nutrition: domain.Nutrition{Calories: kcal},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearch_ShortQueryShortCircuits(t *testing.T) {
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			return []domain.Product{product("p1", 100)}, nil
		},
	}
	session := NewSearchSession(gw, nil)
	ctx := context.Background()

	// Populate results first so the short query has something to clear.
	session.Search(ctx, "pomme", domain.SourceGeneric, 10)
	require.NotEmpty(t, session.State().Results)

	session.Search(ctx, "p", domain.SourceAll, 10)

	state := session.State()
	assert.Empty(t, state.Results)
	assert.False(t, state.Searching)
	assert.Empty(t, state.Message)
	assert.Equal(t, 1, gw.callCount(), "short query must not issue any request")
}

func TestSearch_SingleSource(t *testing.T) {
	results := []domain.Product{product("gen1", 52), product("gen2", 0)}
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			return results, nil
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pomme", domain.SourceGeneric, 10)

	state := session.State()
	assert.Equal(t, []string{"gen1", "gen2"}, ids(state.Results))
	assert.False(t, state.Searching)
	assert.False(t, state.LoadingMore)

	calls := gw.recordedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.SourceGeneric, calls[0].Source)
	assert.Equal(t, 10, calls[0].Limit)
}

func TestSearch_AllSourcesHalvesTheLimit(t *testing.T) {
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			return nil, nil
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pomme", domain.SourceAll, 11)

	calls := gw.recordedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, domain.SourceGeneric, calls[0].Source)
	assert.Equal(t, domain.SourceBranded, calls[1].Source)
	// ceil(11/2) = 6 for each source
	assert.Equal(t, 6, calls[0].Limit)
	assert.Equal(t, 6, calls[1].Limit)
}

func TestSearch_MergeOrdersCompleteEntriesFirst(t *testing.T) {
	// Fast source: 6 items, 3 with calories. Slow source: 4 items, all with
	// calories. Expected: the 7 complete entries first in arrival order
	// (fast positives then slow positives), then the 3 incomplete fast ones.
	fast := []domain.Product{
		product("f1", 120), product("f2", 0), product("f3", 89),
		product("f4", 0), product("f5", 45), product("f6", 0),
	}
	slow := []domain.Product{
		product("b1", 210), product("b2", 310), product("b3", 55), product("b4", 99),
	}
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			if source == domain.SourceGeneric {
				return fast, nil
			}
			return slow, nil
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pasta", domain.SourceAll, 10)

	state := session.State()
	assert.Equal(t,
		[]string{"f1", "f3", "f5", "b1", "b2", "b3", "b4", "f2", "f4", "f6"},
		ids(state.Results))
	assert.False(t, state.Searching)
	assert.False(t, state.LoadingMore)
	assert.Empty(t, state.Message)
}

func TestSearch_MergeTruncatesToLimit(t *testing.T) {
	var fast, slow []domain.Product
	for i := 0; i < 8; i++ {
		fast = append(fast, product(fmt.Sprintf("f%d", i), 100))
		slow = append(slow, product(fmt.Sprintf("b%d", i), 100))
	}
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			if source == domain.SourceGeneric {
				return fast, nil
			}
			return slow, nil
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "riz", domain.SourceAll, 10)

	assert.Len(t, session.State().Results, 10)
}

func TestSearch_PartialResultsVisibleBeforeBrandedResolves(t *testing.T) {
	generic := []domain.Product{product("g1", 100)}
	brandedStarted := make(chan struct{})
	releaseBranded := make(chan struct{})

	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			if source == domain.SourceGeneric {
				return generic, nil
			}
			close(brandedStarted)
			<-releaseBranded
			return []domain.Product{product("b1", 200)}, nil
		},
	}
	session := NewSearchSession(gw, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Search(context.Background(), "pomme", domain.SourceAll, 10)
	}()

	<-brandedStarted
	state := session.State()
	assert.Equal(t, []string{"g1"}, ids(state.Results), "generic results must be visible before branded resolves")
	assert.True(t, state.Searching)
	assert.True(t, state.LoadingMore)

	close(releaseBranded)
	<-done

	state = session.State()
	assert.Equal(t, []string{"g1", "b1"}, ids(state.Results))
	assert.False(t, state.Searching)
	assert.False(t, state.LoadingMore)
}

func TestSearch_StaleResultsNeverOverwriteNewerSearch(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			if query == "pomme" {
				close(firstStarted)
				<-releaseFirst
				return []domain.Product{product("stale", 100)}, nil
			}
			return []domain.Product{product("fresh", 100)}, nil
		},
	}
	session := NewSearchSession(gw, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Search(ctx, "pomme", domain.SourceGeneric, 10)
	}()

	<-firstStarted
	// The second search starts and finishes while the first is still in flight.
	session.Search(ctx, "poire", domain.SourceGeneric, 10)
	require.Equal(t, []string{"fresh"}, ids(session.State().Results))

	close(releaseFirst)
	<-done

	state := session.State()
	assert.Equal(t, []string{"fresh"}, ids(state.Results), "q1 results must never appear after q2 was issued")
	assert.False(t, state.Searching)
}

func TestSearch_StaleBrandedStageIsDiscarded(t *testing.T) {
	brandedStarted := make(chan struct{})
	releaseBranded := make(chan struct{})

	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			switch {
			case query == "pomme" && source == domain.SourceGeneric:
				return []domain.Product{product("stale-g", 100)}, nil
			case query == "pomme" && source == domain.SourceBranded:
				close(brandedStarted)
				<-releaseBranded
				return []domain.Product{product("stale-b", 100)}, nil
			default:
				return []domain.Product{product("fresh", 100)}, nil
			}
		},
	}
	session := NewSearchSession(gw, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Search(ctx, "pomme", domain.SourceAll, 10)
	}()

	// First search already published its partial generic results.
	<-brandedStarted
	require.Equal(t, []string{"stale-g"}, ids(session.State().Results))

	session.Search(ctx, "poire", domain.SourceGeneric, 10)
	close(releaseBranded)
	<-done

	state := session.State()
	assert.Equal(t, []string{"fresh"}, ids(state.Results))
	assert.False(t, state.LoadingMore, "stale cleanup must not disturb the newer search's flags")
}

func TestSearch_PrimaryFailureResetsToEmpty(t *testing.T) {
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			return nil, domain.ErrSourceFailure
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pomme", domain.SourceAll, 10)

	state := session.State()
	assert.Empty(t, state.Results)
	assert.Equal(t, MsgSearchFailed, state.Message)
	assert.False(t, state.Searching)
	assert.Equal(t, 1, gw.callCount(), "branded fetch must not run after primary failure")
}

func TestSearch_SecondaryFailureKeepsPartialResults(t *testing.T) {
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			if source == domain.SourceGeneric {
				return []domain.Product{product("g1", 100)}, nil
			}
			return nil, domain.ErrSourceFailure
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pomme", domain.SourceAll, 10)

	state := session.State()
	assert.Equal(t, []string{"g1"}, ids(state.Results), "generic partials survive a branded failure")
	assert.Equal(t, MsgSearchFailed, state.Message)
	assert.False(t, state.Searching)
	assert.False(t, state.LoadingMore)
}

func TestClear_InvalidatesInFlightSearch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			close(started)
			<-release
			return []domain.Product{product("late", 100)}, nil
		},
	}
	session := NewSearchSession(gw, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Search(context.Background(), "pomme", domain.SourceGeneric, 10)
	}()

	<-started
	session.Clear()
	close(release)
	<-done

	state := session.State()
	assert.Empty(t, state.Results, "a cleared session must stay empty when late results resolve")
	assert.False(t, state.Searching)
	assert.Empty(t, state.Message)
}

func TestSearch_DefaultsLimitAndSource(t *testing.T) {
	gw := &scriptedGateway{
		fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
			return nil, nil
		},
	}
	session := NewSearchSession(gw, nil)

	session.Search(context.Background(), "pomme", "", 0)

	calls := gw.recordedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, domain.SourceGeneric, calls[0].Source)
	assert.Equal(t, DefaultSearchLimit/2, calls[0].Limit)
}

func TestScanBarcode(t *testing.T) {
	t.Run("returns the product on success", func(t *testing.T) {
		want := product("3017620422003", 539)
		gw := &scriptedGateway{
			barcode: func(ctx context.Context, code string) (*domain.Product, error) {
				return &want, nil
			},
		}
		session := NewSearchSession(gw, nil)

		got, err := session.ScanBarcode(context.Background(), "3017620422003")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)
		assert.Empty(t, session.State().Message)
	})

	t.Run("unknown code yields nil and the not-found message", func(t *testing.T) {
		gw := &scriptedGateway{
			barcode: func(ctx context.Context, code string) (*domain.Product, error) {
				return nil, domain.ErrProductNotFound
			},
		}
		session := NewSearchSession(gw, nil)

		got, err := session.ScanBarcode(context.Background(), "0000000000000")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, MsgProductNotFound, session.State().Message)
	})

	t.Run("transport failure yields nil and a generic message", func(t *testing.T) {
		cause := errors.New("connection reset")
		gw := &scriptedGateway{
			barcode: func(ctx context.Context, code string) (*domain.Product, error) {
				return nil, cause
			},
		}
		session := NewSearchSession(gw, nil)

		got, err := session.ScanBarcode(context.Background(), "3017620422003")
		assert.ErrorIs(t, err, cause)
		assert.Nil(t, got)
		assert.Equal(t, MsgSearchFailed, session.State().Message)
	})

	t.Run("does not touch visible search results", func(t *testing.T) {
		gw := &scriptedGateway{
			fetch: func(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
				return []domain.Product{product("g1", 100)}, nil
			},
			barcode: func(ctx context.Context, code string) (*domain.Product, error) {
				return nil, domain.ErrProductNotFound
			},
		}
		session := NewSearchSession(gw, nil)
		session.Search(context.Background(), "pomme", domain.SourceGeneric, 10)

		_, _ = session.ScanBarcode(context.Background(), "0000000000000")

		assert.Equal(t, []string{"g1"}, ids(session.State().Results))
	})
}
