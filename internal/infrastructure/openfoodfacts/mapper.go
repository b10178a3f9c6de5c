package openfoodfacts

import "github.com/lymcoach/backend/internal/domain"

// offProduct mirrors the fields we consume from the OpenFoodFacts payload
type offProduct struct {
	Code            string     `json:"code"`
	Name            string     `json:"product_name"`
	Brands          string     `json:"brands"`
	ImageURL        string     `json:"image_front_small_url"`
	Categories      string     `json:"categories"`
	ServingQuantity float64    `json:"serving_quantity"`
	Nutriments      nutriments `json:"nutriments"`
}

type nutriments struct {
	EnergyKcal   float64 `json:"energy-kcal_100g"`
	Proteins     float64 `json:"proteins_100g"`
	Carbs        float64 `json:"carbohydrates_100g"`
	Fats         float64 `json:"fat_100g"`
	Fiber        float64 `json:"fiber_100g"`
	Sugars       float64 `json:"sugars_100g"`
	Sodium       float64 `json:"sodium_100g"`
	SaturatedFat float64 `json:"saturated-fat_100g"`
}

type searchResponse struct {
	Products []offProduct `json:"products"`
	Count    int          `json:"count"`
}

type productResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

// mapToProduct converts an OpenFoodFacts payload to the domain model.
// Nutriments are per 100g; a missing energy value stays zero, which marks
// the product as incomplete for result ordering.
func mapToProduct(p *offProduct) domain.Product {
	product := domain.Product{
		ID:       p.Code,
		Name:     p.Name,
		Brand:    p.Brands,
		ImageURL: p.ImageURL,
		Category: p.Categories,
		Origin:   domain.OriginBranded,
		Nutrition: domain.Nutrition{
			Calories:     p.Nutriments.EnergyKcal,
			Proteins:     p.Nutriments.Proteins,
			Carbs:        p.Nutriments.Carbs,
			Fats:         p.Nutriments.Fats,
			Fiber:        p.Nutriments.Fiber,
			Sugar:        p.Nutriments.Sugars,
			Sodium:       p.Nutriments.Sodium,
			SaturatedFat: p.Nutriments.SaturatedFat,
		},
	}

	if p.ServingQuantity > 0 {
		product.ServingSize = p.ServingQuantity
		product.ServingUnit = "g"
	}
	return product
}
