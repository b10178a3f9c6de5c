package ciqual

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lymcoach/backend/internal/domain"
)

func testFoods() []Food {
	return []Food{
		{
			ID: "ciqual-13010", Name: "Pomme, crue", Category: "fruits",
			Role:      domain.RoleFruit,
			Nutrition: domain.Nutrition{Calories: 53.2, Carbs: 11.3, Fiber: 1.95},
		},
		{
			ID: "ciqual-13039", Name: "Jus de pomme, pur jus", Category: "boissons",
			Nutrition: domain.Nutrition{Calories: 44.9, Carbs: 10.6},
		},
		{
			ID: "ciqual-19041", Name: "Lait demi-écrémé, UHT", Category: "laitages",
			Role:      domain.RoleDairy,
			Nutrition: domain.Nutrition{Calories: 46.2, Proteins: 3.25, Carbs: 4.8, Fats: 1.53},
		},
		{
			ID: "ciqual-36018", Name: "Poulet, filet, sans peau, cuit", Category: "viandes",
			Role:        domain.RoleProtein,
			Nutrition:   domain.Nutrition{Calories: 145, Proteins: 29.2, Fats: 2.9},
			MinPortionG: 80, MaxPortionG: 250,
		},
		{
			ID: "ciqual-36000", Name: "Boeuf, steak haché 5% MG, cuit", Category: "viandes",
			Role:      domain.RoleProtein,
			Nutrition: domain.Nutrition{Calories: 132, Proteins: 26.5, Fats: 3.1},
		},
	}
}

func TestSearch_RanksBestMatchFirst(t *testing.T) {
	repo := New(testFoods(), nil)

	products, err := repo.Search(context.Background(), "pomme", 10)

	require.NoError(t, err)
	require.Len(t, products, 2)
	// "Pomme, crue" covers more of its own tokens than "Jus de pomme, pur jus"
	assert.Equal(t, "ciqual-13010", products[0].ID)
	assert.Equal(t, "ciqual-13039", products[1].ID)
	assert.Equal(t, domain.OriginCiqual, products[0].Origin)
}

func TestSearch_FoldsAccents(t *testing.T) {
	repo := New(testFoods(), nil)

	products, err := repo.Search(context.Background(), "lait ecreme", 10)

	require.NoError(t, err)
	require.NotEmpty(t, products)
	assert.Equal(t, "ciqual-19041", products[0].ID)
}

func TestSearch_NoMatchReturnsEmpty(t *testing.T) {
	repo := New(testFoods(), nil)

	products, err := repo.Search(context.Background(), "chocolat", 10)

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearch_RespectsLimit(t *testing.T) {
	repo := New(testFoods(), nil)

	products, err := repo.Search(context.Background(), "pomme jus", 1)

	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSearch_StopWordOnlyQuery(t *testing.T) {
	repo := New(testFoods(), nil)

	products, err := repo.Search(context.Background(), "de la", 10)

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFoodsForRole(t *testing.T) {
	repo := New(testFoods(), nil)

	proteins, err := repo.FoodsForRole(context.Background(), domain.RoleProtein)
	require.NoError(t, err)
	require.Len(t, proteins, 2)
	// Highest protein density first
	assert.Equal(t, "ciqual-36018", proteins[0].ID)
	assert.Equal(t, 80.0, proteins[0].MinPortionG)

	fruits, err := repo.FoodsForRole(context.Background(), domain.RoleFruit)
	require.NoError(t, err)
	require.Len(t, fruits, 1)
	assert.Equal(t, "ciqual-13010", fruits[0].ID)
}

func TestLoad(t *testing.T) {
	t.Run("loads a valid dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ciqual.json")
		data := `[{"id":"ciqual-13010","name":"Pomme, crue","category":"fruits","nutrition":{"calories":53.2}}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		repo, err := Load(path, nil)
		require.NoError(t, err)

		products, err := repo.Search(context.Background(), "pomme", 10)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("rejects a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
		assert.Error(t, err)
	})

	t.Run("rejects an empty dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ciqual.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

		_, err := Load(path, nil)
		assert.Error(t, err)
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Pomme, crue", []string{"pomme"}},
		{"Lait demi-écrémé, UHT", []string{"lait", "demi", "ecreme", "uht"}},
		{"de la à", nil},
		{"Bœuf braisé", []string{"boeuf", "braise"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.input))
		})
	}
}
