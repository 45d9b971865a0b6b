package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/types"
)

func TestSyncBuildsListFromAcceptedMeals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	acceptedMeal(t, env, household, alice, bob, "omelette", []types.Ingredient{
		{Name: "egg", Quantity: floatP(2), Unit: strP("each"), Category: "dairy"},
		{Name: "butter", Quantity: floatP(20), Unit: strP("g"), Category: "dairy"},
	})
	acceptedMeal(t, env, household, bob, alice, "fried rice", []types.Ingredient{
		{Name: "Egg", Quantity: floatP(2), Unit: strP("each"), Category: "dairy"},
		{Name: "rice", Quantity: floatP(300), Unit: strP("g"), Category: "grains"},
	})

	items, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)
	require.Len(t, items, 3)

	byName := map[string]*types.ShoppingItem{}
	for _, it := range items {
		byName[it.Name] = it
	}
	require.Contains(t, byName, "egg")
	require.NotNil(t, byName["egg"].Quantity)
	assert.Equal(t, 4.0, *byName["egg"].Quantity)
	assert.False(t, byName["egg"].Checked)
}

func TestSyncIgnoresUnacceptedAndNonMeals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	// Still proposed: its ingredients must not leak into the list.
	_, err := env.tasks.Create(ctx, household, alice, CreateTaskInput{
		Title:       "maybe curry",
		TaskType:    types.TaskTypeMeal,
		DayWindow:   strP("friday"),
		WeekStart:   timeP(monday()),
		Ingredients: []types.Ingredient{{Name: "chicken", Quantity: floatP(1), Unit: strP("kg"), Category: "meat"}},
	})
	require.NoError(t, err)

	// A backlog meal has no week and is invisible to any week's sync.
	created, err := env.tasks.Create(ctx, household, alice, CreateTaskInput{
		Title:       "someday stew",
		TaskType:    types.TaskTypeMeal,
		Ingredients: []types.Ingredient{{Name: "beef", Quantity: floatP(500), Unit: strP("g"), Category: "meat"}},
	})
	require.NoError(t, err)
	_, err = env.tasks.Patch(ctx, created.ID, bob, TaskPatch{State: strP(types.StateAccepted)})
	require.NoError(t, err)

	items, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSyncIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	acceptedMeal(t, env, household, alice, bob, "pancakes", []types.Ingredient{
		{Name: "flour", Quantity: floatP(250), Unit: strP("g"), Category: "grains"},
		{Name: "milk", Quantity: floatP(0.5), Unit: strP("l"), Category: "dairy"},
	})

	first, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)
	second, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Quantity, second[i].Quantity)
		assert.Equal(t, first[i].Checked, second[i].Checked)
	}
}

func TestSyncPreservesCheckedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	acceptedMeal(t, env, household, alice, bob, "omelette", []types.Ingredient{
		{Name: "egg", Quantity: floatP(2), Unit: strP("each"), Category: "dairy"},
		{Name: "butter", Quantity: floatP(20), Unit: strP("g"), Category: "dairy"},
	})

	items, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)

	var eggID = items[0].ID
	for _, it := range items {
		if it.Name == "egg" {
			eggID = it.ID
		}
	}
	_, err = env.shopping.Toggle(ctx, eggID, true)
	require.NoError(t, err)

	// A second meal doubles the egg demand; the checked line must survive
	// untouched rather than reappear unchecked with a new quantity.
	acceptedMeal(t, env, household, bob, alice, "shakshuka", []types.Ingredient{
		{Name: "egg", Quantity: floatP(4), Unit: strP("each"), Category: "dairy"},
		{Name: "tomato", Quantity: floatP(3), Unit: strP("each"), Category: "produce"},
	})

	items, err = env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)

	var eggs []*types.ShoppingItem
	for _, it := range items {
		if it.Name == "egg" {
			eggs = append(eggs, it)
		}
	}
	require.Len(t, eggs, 1, "checked item must not be duplicated by a re-sync")
	assert.Equal(t, eggID, eggs[0].ID)
	assert.True(t, eggs[0].Checked)
	require.NotNil(t, eggs[0].Quantity)
	assert.Equal(t, 2.0, *eggs[0].Quantity, "checked quantity is frozen at check time")
}

func TestSyncWithNoMealsKeepsCheckedLeftovers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	meal := acceptedMeal(t, env, household, alice, bob, "toast", []types.Ingredient{
		{Name: "bread", Quantity: floatP(1), Unit: strP("loaf"), Category: "grains"},
		{Name: "jam", Category: "pantry"},
	})

	items, err := env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		if it.Name == "bread" {
			_, err = env.shopping.Toggle(ctx, it.ID, true)
			require.NoError(t, err)
		}
	}

	require.NoError(t, env.tasks.Delete(ctx, meal.ID, alice))

	items, err = env.shopping.Sync(ctx, household, monday())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bread", items[0].Name)
	assert.True(t, items[0].Checked)
}

func TestSyncRejectsNonMondayAnchor(t *testing.T) {
	env := newTestEnv(t)
	household, _, _ := seedHousehold(t, env)

	tuesday := monday().AddDate(0, 0, 1)
	_, err := env.shopping.Sync(context.Background(), household, tuesday)
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))

	_, err = env.shopping.Get(context.Background(), household, tuesday)
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
}

func TestSyncScopedToWeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	household, alice, bob := seedHousehold(t, env)

	acceptedMeal(t, env, household, alice, bob, "omelette", []types.Ingredient{
		{Name: "egg", Quantity: floatP(2), Unit: strP("each"), Category: "dairy"},
	})

	nextMonday := monday().AddDate(0, 0, 7)
	items, err := env.shopping.Sync(ctx, household, nextMonday)
	require.NoError(t, err)
	assert.Empty(t, items, "next week's list must not see this week's meals")
}

func TestToggleUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	seedHousehold(t, env)

	_, err := env.shopping.Toggle(context.Background(), uuid.New(), true)
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}
