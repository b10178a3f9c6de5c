package domain

import "time"

// MealType identifies one of the four daily meals
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnack     MealType = "snack"
	MealDinner    MealType = "dinner"
)

// FoodRole classifies what a food contributes to a composed meal
type FoodRole string

const (
	RoleProtein   FoodRole = "protein"
	RoleCarb      FoodRole = "carb"
	RoleVegetable FoodRole = "vegetable"
	RoleFat       FoodRole = "fat"
	RoleFruit     FoodRole = "fruit"
	RoleDairy     FoodRole = "dairy"
)

// Macros holds calories and macronutrients, per 100g or as a total
type Macros struct {
	Calories float64 `json:"calories"`
	Proteins float64 `json:"proteins"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Scale returns the macros multiplied by factor
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Proteins: m.Proteins * factor,
		Carbs:    m.Carbs * factor,
		Fats:     m.Fats * factor,
	}
}

// Add returns the component-wise sum of two macros
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		Proteins: m.Proteins + other.Proteins,
		Carbs:    m.Carbs + other.Carbs,
		Fats:     m.Fats + other.Fats,
	}
}

// PlannerFood is a food candidate for the meal plan solver
type PlannerFood struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        FoodRole `json:"role"`
	Per100g     Macros   `json:"per100g"`
	MinPortionG float64  `json:"minPortionG,omitempty"`
	MaxPortionG float64  `json:"maxPortionG,omitempty"`
}

// MealDistribution splits the daily calorie target across meals, in percent.
// The four percentages are expected to sum to 100.
type MealDistribution struct {
	BreakfastPct float64 `json:"breakfastPct"`
	LunchPct     float64 `json:"lunchPct"`
	SnackPct     float64 `json:"snackPct"`
	DinnerPct    float64 `json:"dinnerPct"`
}

// PlanConstraints are the user inputs to the meal plan solver
type PlanConstraints struct {
	DailyTarget  Macros           `json:"dailyTarget"`
	TolerancePct float64          `json:"tolerancePct"`
	NumDays      int              `json:"numDays"`
	Distribution MealDistribution `json:"distribution"`
	// CheatMealDay is the zero-based index of the +30% calorie day, or -1 for none.
	CheatMealDay int `json:"cheatMealDay"`
}

// MealComponent is one food with its computed quantity inside a meal
type MealComponent struct {
	FoodID string   `json:"foodId"`
	Name   string   `json:"name"`
	Role   FoodRole `json:"role"`
	Grams  float64  `json:"grams"`
	Macros Macros   `json:"macros"`
}

// PlannedMeal is a composed meal with its component totals
type PlannedMeal struct {
	Type       MealType        `json:"type"`
	Components []MealComponent `json:"components"`
	Totals     Macros          `json:"totals"`
}

// DailyPlan groups the meals of one day
type DailyPlan struct {
	Day      int           `json:"day"`
	Meals    []PlannedMeal `json:"meals"`
	Totals   Macros        `json:"totals"`
	CheatDay bool          `json:"cheatDay"`
}

// MealPlan is the solver output for a full period
type MealPlan struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"createdAt"`
	Constraints      PlanConstraints `json:"constraints"`
	Days             []DailyPlan     `json:"days"`
	PeriodTotals     Macros          `json:"periodTotals"`
	DailyAverages    Macros          `json:"dailyAverages"`
	Valid            bool            `json:"valid"`
	ValidationErrors []string        `json:"validationErrors,omitempty"`
}
