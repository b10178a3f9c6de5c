package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lymcoach/backend/internal/domain"
)

// fakeFoodSource serves a fixed table keyed by role
type fakeFoodSource struct {
	byRole map[domain.FoodRole][]domain.PlannerFood
}

func (f *fakeFoodSource) FoodsForRole(ctx context.Context, role domain.FoodRole) ([]domain.PlannerFood, error) {
	return f.byRole[role], nil
}

// flatFood builds a 100 kcal/100g candidate, which makes expected gram
// quantities equal to the calorie budget in tests.
func flatFood(id string, role domain.FoodRole) domain.PlannerFood {
	return domain.PlannerFood{
		ID:      id,
		Name:    id,
		Role:    role,
		Per100g: domain.Macros{Calories: 100, Proteins: 10, Carbs: 10, Fats: 2},
	}
}

func plannerFixture() *fakeFoodSource {
	return &fakeFoodSource{byRole: map[domain.FoodRole][]domain.PlannerFood{
		domain.RoleProtein:   {flatFood("poulet", domain.RoleProtein), flatFood("cabillaud", domain.RoleProtein)},
		domain.RoleCarb:      {flatFood("riz", domain.RoleCarb), flatFood("pates", domain.RoleCarb)},
		domain.RoleVegetable: {flatFood("brocoli", domain.RoleVegetable), flatFood("courgette", domain.RoleVegetable)},
		domain.RoleFruit:     {flatFood("pomme", domain.RoleFruit), flatFood("banane", domain.RoleFruit)},
		domain.RoleDairy:     {flatFood("yaourt", domain.RoleDairy), flatFood("fromage-blanc", domain.RoleDairy)},
	}}
}

func baseConstraints() domain.PlanConstraints {
	return domain.PlanConstraints{
		DailyTarget:  domain.Macros{Calories: 2000},
		TolerancePct: 10,
		NumDays:      3,
		CheatMealDay: -1,
		Distribution: domain.MealDistribution{BreakfastPct: 25, LunchPct: 35, SnackPct: 10, DinnerPct: 30},
	}
}

func TestGeneratePlan_HitsDailyTarget(t *testing.T) {
	planner := NewMealPlanner(plannerFixture(), nil)

	plan, err := planner.GeneratePlan(context.Background(), baseConstraints())

	require.NoError(t, err)
	assert.True(t, plan.Valid)
	assert.Empty(t, plan.ValidationErrors)
	require.Len(t, plan.Days, 3)

	for _, day := range plan.Days {
		assert.InDelta(t, 2000, day.Totals.Calories, 2000*0.02, "day %d", day.Day)
		require.Len(t, day.Meals, 4)
		assert.Equal(t, domain.MealBreakfast, day.Meals[0].Type)
		assert.Equal(t, domain.MealDinner, day.Meals[3].Type)
	}

	// With 100 kcal/100g foods the breakfast budget of 500 kcal splits
	// 50/30/20 across carb, dairy and fruit.
	breakfast := plan.Days[0].Meals[0]
	require.Len(t, breakfast.Components, 3)
	assert.Equal(t, 250.0, breakfast.Components[0].Grams)
	assert.Equal(t, 150.0, breakfast.Components[1].Grams)
	assert.Equal(t, 100.0, breakfast.Components[2].Grams)

	assert.InDelta(t, 2000, plan.DailyAverages.Calories, 2000*0.02)
}

func TestGeneratePlan_RotatesFoodsForVariety(t *testing.T) {
	planner := NewMealPlanner(plannerFixture(), nil)

	plan, err := planner.GeneratePlan(context.Background(), baseConstraints())
	require.NoError(t, err)

	day := plan.Days[0]
	breakfastCarb := day.Meals[0].Components[0].FoodID
	lunchCarb := day.Meals[1].Components[1].FoodID
	assert.NotEqual(t, breakfastCarb, lunchCarb, "same role in consecutive meals rotates candidates")

	lunchProtein := day.Meals[1].Components[0].FoodID
	dinnerProtein := day.Meals[3].Components[0].FoodID
	assert.NotEqual(t, lunchProtein, dinnerProtein)
}

func TestGeneratePlan_CheatDay(t *testing.T) {
	planner := NewMealPlanner(plannerFixture(), nil)

	constraints := baseConstraints()
	constraints.CheatMealDay = 1

	plan, err := planner.GeneratePlan(context.Background(), constraints)
	require.NoError(t, err)
	assert.True(t, plan.Valid)

	assert.False(t, plan.Days[0].CheatDay)
	assert.True(t, plan.Days[1].CheatDay)
	assert.InDelta(t, 2600, plan.Days[1].Totals.Calories, 2600*0.02, "cheat day targets +30%")
	assert.InDelta(t, 2000, plan.Days[2].Totals.Calories, 2000*0.02)
}

func TestGeneratePlan_Deterministic(t *testing.T) {
	planner := NewMealPlanner(plannerFixture(), nil)

	first, err := planner.GeneratePlan(context.Background(), baseConstraints())
	require.NoError(t, err)
	second, err := planner.GeneratePlan(context.Background(), baseConstraints())
	require.NoError(t, err)

	assert.Equal(t, first.Days, second.Days)
	assert.Equal(t, first.PeriodTotals, second.PeriodTotals)
}

func TestGeneratePlan_ToleranceViolationFlagsPlanInvalid(t *testing.T) {
	// Tiny portion caps keep every meal far below target.
	source := plannerFixture()
	for role, foods := range source.byRole {
		for i := range foods {
			foods[i].MaxPortionG = 50
		}
		source.byRole[role] = foods
	}
	planner := NewMealPlanner(source, nil)

	constraints := baseConstraints()
	constraints.NumDays = 2

	plan, err := planner.GeneratePlan(context.Background(), constraints)

	require.NoError(t, err, "tolerance violations report, they do not reject")
	assert.False(t, plan.Valid)
	assert.Len(t, plan.ValidationErrors, 2)
}

func TestGeneratePlan_InfeasibleWithoutRoleCandidates(t *testing.T) {
	source := plannerFixture()
	delete(source.byRole, domain.RoleProtein)
	planner := NewMealPlanner(source, nil)

	_, err := planner.GeneratePlan(context.Background(), baseConstraints())
	assert.ErrorIs(t, err, domain.ErrInfeasiblePlan)
}

func TestGeneratePlan_ConstraintValidation(t *testing.T) {
	planner := NewMealPlanner(plannerFixture(), nil)

	t.Run("zero calorie target", func(t *testing.T) {
		constraints := baseConstraints()
		constraints.DailyTarget.Calories = 0
		_, err := planner.GeneratePlan(context.Background(), constraints)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("distribution does not sum to 100", func(t *testing.T) {
		constraints := baseConstraints()
		constraints.Distribution.DinnerPct = 50
		_, err := planner.GeneratePlan(context.Background(), constraints)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("cheat day outside plan", func(t *testing.T) {
		constraints := baseConstraints()
		constraints.CheatMealDay = 3
		_, err := planner.GeneratePlan(context.Background(), constraints)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("defaults applied", func(t *testing.T) {
		plan, err := planner.GeneratePlan(context.Background(), domain.PlanConstraints{
			DailyTarget:  domain.Macros{Calories: 1800},
			CheatMealDay: -1,
		})
		require.NoError(t, err)
		assert.Len(t, plan.Days, 7)
		assert.Equal(t, 10.0, plan.Constraints.TolerancePct)
	})
}
