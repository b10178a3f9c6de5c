package ciqual

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// Food is one record of the bundled CIQUAL-style composition table
type Food struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Role        domain.FoodRole  `json:"role,omitempty"`
	Nutrition   domain.Nutrition `json:"nutrition"`
	MinPortionG float64          `json:"minPortionG,omitempty"`
	MaxPortionG float64          `json:"maxPortionG,omitempty"`
}

// Repository serves the generic food source from an in-memory table.
// Lookups never touch the network, which is what makes this the "fast"
// source in the progressive search flow.
type Repository struct {
	foods  []Food
	logger *zap.Logger
}

// New creates a repository over an already-loaded food table
func New(foods []Food, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{foods: foods, logger: logger}
}

// Load reads the composition table from a JSON file
func Load(path string, logger *zap.Logger) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ciqual dataset: %w", err)
	}

	var foods []Food
	if err := json.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("failed to parse ciqual dataset: %w", err)
	}
	if len(foods) == 0 {
		return nil, fmt.Errorf("ciqual dataset %s is empty", path)
	}

	if logger != nil {
		logger.Info("ciqual dataset loaded", zap.String("path", path), zap.Int("foods", len(foods)))
	}
	return New(foods, logger), nil
}

// Search ranks the table against the query and returns the best matches.
// Foods that share no token with the query are excluded entirely.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []domain.Product{}, nil
	}

	type scored struct {
		food  Food
		score float64
	}

	var candidates []scored
	for _, food := range r.foods {
		score := matchScore(queryTokens, query, food.Name)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scored{food: food, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	products := make([]domain.Product, 0, len(candidates))
	for _, c := range candidates {
		products = append(products, toProduct(c.food))
	}
	return products, nil
}

// FoodsForRole returns the planner candidates for one food role, highest
// protein density first for protein foods and alphabetically otherwise.
func (r *Repository) FoodsForRole(ctx context.Context, role domain.FoodRole) ([]domain.PlannerFood, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var foods []domain.PlannerFood
	for _, f := range r.foods {
		if f.Role != role {
			continue
		}
		foods = append(foods, domain.PlannerFood{
			ID:   f.ID,
			Name: f.Name,
			Role: f.Role,
			Per100g: domain.Macros{
				Calories: f.Nutrition.Calories,
				Proteins: f.Nutrition.Proteins,
				Carbs:    f.Nutrition.Carbs,
				Fats:     f.Nutrition.Fats,
			},
			MinPortionG: f.MinPortionG,
			MaxPortionG: f.MaxPortionG,
		})
	}

	if role == domain.RoleProtein {
		sort.SliceStable(foods, func(i, j int) bool {
			return foods[i].Per100g.Proteins > foods[j].Per100g.Proteins
		})
	} else {
		sort.SliceStable(foods, func(i, j int) bool {
			return foods[i].Name < foods[j].Name
		})
	}
	return foods, nil
}

func toProduct(f Food) domain.Product {
	return domain.Product{
		ID:          f.ID,
		Name:        f.Name,
		Nutrition:   f.Nutrition,
		ServingSize: 100,
		ServingUnit: "g",
		Category:    f.Category,
		Origin:      domain.OriginCiqual,
	}
}
