package domain

import (
	"context"
	"time"
)

// SearchGateway is the client-side view of the search API: one product
// search endpoint plus a barcode lookup. Implemented over HTTP by
// infrastructure/searchapi and consumed by the search aggregator.
type SearchGateway interface {
	FetchProducts(ctx context.Context, query string, source SearchSource, limit int) ([]Product, error)
	// LookupBarcode returns ErrProductNotFound for unknown codes.
	LookupBarcode(ctx context.Context, code string) (*Product, error)
}

// FoodSource is a server-side product database (generic table or branded API)
type FoodSource interface {
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}

// BarcodeSource resolves a scanned barcode to a product
type BarcodeSource interface {
	LookupBarcode(ctx context.Context, code string) (*Product, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Embedder turns text into a vector for similarity search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatCompleter generates a chat completion from a system and user prompt
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// KnowledgeBase performs vector similarity search over coaching passages
type KnowledgeBase interface {
	// SearchPassages returns passages whose cosine similarity to the query
	// vector is at least threshold, best first. An empty category matches all.
	SearchPassages(ctx context.Context, embedding []float32, threshold float32, limit int, category string) ([]Passage, error)
}

// ConversationRepository persists coach question/answer turns
type ConversationRepository interface {
	SaveTurn(ctx context.Context, turn ConversationTurn) error
}
