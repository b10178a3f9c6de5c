package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// PlannerFoodSource supplies food candidates per role to the solver
type PlannerFoodSource interface {
	FoodsForRole(ctx context.Context, role domain.FoodRole) ([]domain.PlannerFood, error)
}

const (
	// cheatDayFactor raises the calorie target on the optional cheat day
	cheatDayFactor = 1.30

	defaultNumDays      = 7
	defaultTolerancePct = 10
)

// defaultDistribution splits the day when the caller provides none
var defaultDistribution = domain.MealDistribution{
	BreakfastPct: 25,
	LunchPct:     35,
	SnackPct:     10,
	DinnerPct:    30,
}

// mealRoles lists which food roles compose each meal type
var mealRoles = map[domain.MealType][]domain.FoodRole{
	domain.MealBreakfast: {domain.RoleCarb, domain.RoleDairy, domain.RoleFruit},
	domain.MealLunch:     {domain.RoleProtein, domain.RoleCarb, domain.RoleVegetable},
	domain.MealSnack:     {domain.RoleFruit, domain.RoleDairy},
	domain.MealDinner:    {domain.RoleProtein, domain.RoleCarb, domain.RoleVegetable},
}

// roleWeights splits a meal's calorie budget across its roles
var roleWeights = map[domain.MealType]map[domain.FoodRole]float64{
	domain.MealBreakfast: {domain.RoleCarb: 0.50, domain.RoleDairy: 0.30, domain.RoleFruit: 0.20},
	domain.MealLunch:     {domain.RoleProtein: 0.40, domain.RoleCarb: 0.35, domain.RoleVegetable: 0.25},
	domain.MealSnack:     {domain.RoleFruit: 0.50, domain.RoleDairy: 0.50},
	domain.MealDinner:    {domain.RoleProtein: 0.40, domain.RoleCarb: 0.35, domain.RoleVegetable: 0.25},
}

// mealOrder fixes the meal sequence inside a day
var mealOrder = []domain.MealType{
	domain.MealBreakfast,
	domain.MealLunch,
	domain.MealSnack,
	domain.MealDinner,
}

// MealPlanner composes multi-day meal plans from the generic food table.
// The solver is deterministic: same constraints and same food table always
// produce the same plan.
type MealPlanner struct {
	foods  PlannerFoodSource
	logger *zap.Logger
}

// NewMealPlanner creates a meal planner with dependencies
func NewMealPlanner(foods PlannerFoodSource, logger *zap.Logger) *MealPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPlanner{foods: foods, logger: logger}
}

// GeneratePlan builds a plan for the given constraints. Validation failures
// against the calorie tolerance do not reject the plan; they are reported in
// ValidationErrors with Valid set to false.
func (p *MealPlanner) GeneratePlan(ctx context.Context, constraints domain.PlanConstraints) (*domain.MealPlan, error) {
	constraints = applyDefaults(constraints)
	if err := validateConstraints(constraints); err != nil {
		return nil, err
	}

	candidates, err := p.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	// Each role rotates through its candidate list across the whole plan so
	// consecutive days do not repeat the same foods.
	cursors := make(map[domain.FoodRole]int)

	plan := &domain.MealPlan{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Constraints: constraints,
		Valid:       true,
	}

	for day := 0; day < constraints.NumDays; day++ {
		dayTarget := constraints.DailyTarget.Calories
		cheat := day == constraints.CheatMealDay
		if cheat {
			dayTarget *= cheatDayFactor
		}

		daily := domain.DailyPlan{Day: day, CheatDay: cheat}
		for _, mealType := range mealOrder {
			mealTarget := dayTarget * mealShare(constraints.Distribution, mealType) / 100
			meal := composeMeal(mealType, mealTarget, candidates, cursors)
			daily.Totals = daily.Totals.Add(meal.Totals)
			daily.Meals = append(daily.Meals, meal)
		}

		if deviation := relativeDeviationPct(daily.Totals.Calories, dayTarget); deviation > constraints.TolerancePct {
			plan.Valid = false
			plan.ValidationErrors = append(plan.ValidationErrors,
				fmt.Sprintf("day %d: %.0f kcal deviates %.1f%% from the %.0f kcal target (tolerance %.0f%%)",
					day, daily.Totals.Calories, deviation, dayTarget, constraints.TolerancePct))
		}

		plan.PeriodTotals = plan.PeriodTotals.Add(daily.Totals)
		plan.Days = append(plan.Days, daily)
	}

	plan.DailyAverages = plan.PeriodTotals.Scale(1 / float64(constraints.NumDays))

	p.logger.Info("meal plan generated",
		zap.String("planId", plan.ID),
		zap.Int("days", constraints.NumDays),
		zap.Bool("valid", plan.Valid))
	return plan, nil
}

func applyDefaults(c domain.PlanConstraints) domain.PlanConstraints {
	if c.NumDays <= 0 {
		c.NumDays = defaultNumDays
	}
	if c.TolerancePct <= 0 {
		c.TolerancePct = defaultTolerancePct
	}
	if c.Distribution == (domain.MealDistribution{}) {
		c.Distribution = defaultDistribution
	}
	return c
}

func validateConstraints(c domain.PlanConstraints) error {
	if c.DailyTarget.Calories <= 0 {
		return fmt.Errorf("%w: daily calorie target must be positive", domain.ErrInvalidRequest)
	}
	sum := c.Distribution.BreakfastPct + c.Distribution.LunchPct + c.Distribution.SnackPct + c.Distribution.DinnerPct
	if math.Abs(sum-100) > 0.5 {
		return fmt.Errorf("%w: meal distribution sums to %.1f%%, expected 100%%", domain.ErrInvalidRequest, sum)
	}
	if c.CheatMealDay >= c.NumDays {
		return fmt.Errorf("%w: cheat meal day %d outside the %d-day plan", domain.ErrInvalidRequest, c.CheatMealDay, c.NumDays)
	}
	return nil
}

// loadCandidates fetches the candidate foods for every role the meal
// compositions use. A role with no usable candidates makes the plan
// infeasible.
func (p *MealPlanner) loadCandidates(ctx context.Context) (map[domain.FoodRole][]domain.PlannerFood, error) {
	needed := map[domain.FoodRole]bool{}
	for _, roles := range mealRoles {
		for _, role := range roles {
			needed[role] = true
		}
	}

	candidates := make(map[domain.FoodRole][]domain.PlannerFood, len(needed))
	for role := range needed {
		foods, err := p.foods.FoodsForRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to load foods for role %s: %w", role, err)
		}

		usable := foods[:0:0]
		for _, f := range foods {
			if f.Per100g.Calories > 0 {
				usable = append(usable, f)
			}
		}
		if len(usable) == 0 {
			return nil, fmt.Errorf("%w: no usable food for role %s", domain.ErrInfeasiblePlan, role)
		}
		candidates[role] = usable
	}
	return candidates, nil
}

// composeMeal builds one meal against its calorie budget. Each role gets its
// weighted share, quantities are clamped to the food's portion bounds, then
// one global scale pass pulls the meal back toward its target.
func composeMeal(mealType domain.MealType, targetKcal float64, candidates map[domain.FoodRole][]domain.PlannerFood, cursors map[domain.FoodRole]int) domain.PlannedMeal {
	meal := domain.PlannedMeal{Type: mealType}

	for _, role := range mealRoles[mealType] {
		food := nextFood(candidates[role], cursors, role)
		roleKcal := targetKcal * roleWeights[mealType][role]

		grams := clampPortion(food, roleKcal/food.Per100g.Calories*100)
		meal.Components = append(meal.Components, component(food, grams))
	}

	meal = rescaleMeal(meal, targetKcal, candidates)
	for _, c := range meal.Components {
		meal.Totals = meal.Totals.Add(c.Macros)
	}
	return meal
}

// rescaleMeal applies one proportional adjustment so the clamped components
// land closer to the meal target. Portions are re-clamped afterwards, so a
// meal made of tightly bounded foods may still miss its target; the daily
// tolerance check catches that.
func rescaleMeal(meal domain.PlannedMeal, targetKcal float64, candidates map[domain.FoodRole][]domain.PlannerFood) domain.PlannedMeal {
	total := 0.0
	for _, c := range meal.Components {
		total += c.Macros.Calories
	}
	if total <= 0 {
		return meal
	}

	factor := targetKcal / total
	if math.Abs(factor-1) < 0.01 {
		return meal
	}

	for i, c := range meal.Components {
		food, ok := findFood(candidates[c.Role], c.FoodID)
		if !ok {
			continue
		}
		grams := clampPortion(food, c.Grams*factor)
		meal.Components[i] = component(food, grams)
	}
	return meal
}

// nextFood rotates through the role's candidates for variety
func nextFood(foods []domain.PlannerFood, cursors map[domain.FoodRole]int, role domain.FoodRole) domain.PlannerFood {
	food := foods[cursors[role]%len(foods)]
	cursors[role]++
	return food
}

func findFood(foods []domain.PlannerFood, id string) (domain.PlannerFood, bool) {
	for _, f := range foods {
		if f.ID == id {
			return f, true
		}
	}
	return domain.PlannerFood{}, false
}

// clampPortion bounds grams to the food's portion range and rounds to 5g,
// which is the finest granularity a kitchen scale realistically serves.
func clampPortion(food domain.PlannerFood, grams float64) float64 {
	minG := food.MinPortionG
	if minG <= 0 {
		minG = 20
	}
	maxG := food.MaxPortionG
	if maxG <= 0 {
		maxG = 400
	}

	grams = math.Max(minG, math.Min(maxG, grams))
	return math.Round(grams/5) * 5
}

func component(food domain.PlannerFood, grams float64) domain.MealComponent {
	return domain.MealComponent{
		FoodID: food.ID,
		Name:   food.Name,
		Role:   food.Role,
		Grams:  grams,
		Macros: food.Per100g.Scale(grams / 100),
	}
}

func mealShare(d domain.MealDistribution, mealType domain.MealType) float64 {
	switch mealType {
	case domain.MealBreakfast:
		return d.BreakfastPct
	case domain.MealLunch:
		return d.LunchPct
	case domain.MealSnack:
		return d.SnackPct
	default:
		return d.DinnerPct
	}
}

func relativeDeviationPct(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Abs(actual-target) / target * 100
}
