package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be found in any food database
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidSource is returned when a search names an unknown food source
	ErrInvalidSource = errors.New("invalid search source")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSourceFailure is returned when a food database request fails
	ErrSourceFailure = errors.New("food source request failed")

	// ErrEmbeddingFailure is returned when the embedding provider fails
	ErrEmbeddingFailure = errors.New("embedding request failed")

	// ErrCompletionFailure is returned when the chat completion provider fails
	ErrCompletionFailure = errors.New("chat completion request failed")

	// ErrInfeasiblePlan is returned when no meal plan can be composed from the available foods
	ErrInfeasiblePlan = errors.New("meal plan infeasible")
)
