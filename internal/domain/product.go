package domain

// ProductOrigin tags which database a product came from
type ProductOrigin string

const (
	OriginGeneric ProductOrigin = "local-generic"       // bundled common-foods table
	OriginCiqual  ProductOrigin = "local-ciqual-analog" // CIQUAL composition table
	OriginBranded ProductOrigin = "external-branded"    // OpenFoodFacts-style external database
)

// SearchSource selects which food database(s) a search hits
type SearchSource string

const (
	SourceAll     SearchSource = "all"
	SourceGeneric SearchSource = "generic"
	SourceBranded SearchSource = "branded"
)

// Valid reports whether the source is one of the known values
func (s SearchSource) Valid() bool {
	return s == SourceAll || s == SourceGeneric || s == SourceBranded
}

// Nutrition holds per-100g nutrition facts for a product.
// Fiber, sugar, sodium and saturated fat are not present in every source.
type Nutrition struct {
	Calories     float64 `json:"calories"`
	Proteins     float64 `json:"proteins"`
	Carbs        float64 `json:"carbs"`
	Fats         float64 `json:"fats"`
	Fiber        float64 `json:"fiber,omitempty"`
	Sugar        float64 `json:"sugar,omitempty"`
	Sodium       float64 `json:"sodium,omitempty"`
	SaturatedFat float64 `json:"saturatedFat,omitempty"`
}

// Product is a food item returned by a search or barcode lookup
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Brand       string        `json:"brand,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Nutrition   Nutrition     `json:"nutrition"`
	ServingSize float64       `json:"servingSize,omitempty"`
	ServingUnit string        `json:"servingUnit,omitempty"`
	Category    string        `json:"category,omitempty"`
	Origin      ProductOrigin `json:"origin,omitempty"`
}

// HasCalories reports whether the product carries usable calorie data.
// Products without it sort after complete ones in merged search results.
func (p Product) HasCalories() bool {
	return p.Nutrition.Calories > 0
}
