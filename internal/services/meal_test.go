package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cannedMeal = `{"name":"Oatmeal breakfast","items":[
{"name":"Oatmeal","grams":250,"calories":300,"protein":10.04,"carbs":54,"fat":6},
{"name":"Banana","grams":120,"calories":105,"protein":1.3,"carbs":27,"fat":0.4}]}`

func newMealService(t *testing.T, gen *fakeGenerator) (*testServices, *MealService) {
	ts := newTestServices(t, at(2025, 3, 10, 8, 15))
	return ts, NewMealService(ts.db, ts.gamification, gen, ts.clock, moscow)
}

func TestMealAnalyze_CreatesPendingMeal(t *testing.T) {
	gen := &fakeGenerator{response: cannedMeal}
	ts, svc := newMealService(t, gen)
	user := createUser(t, ts.db, 6001)

	meal, err := svc.Analyze(context.Background(), user.ID, AnalyzeRequest{Text: "  oatmeal with a banana "})
	require.NoError(t, err)

	assert.Equal(t, models.MealStatusPending, meal.Status)
	assert.Equal(t, models.MealSourceText, meal.Source)
	assert.Equal(t, "Oatmeal breakfast", meal.Name)
	assert.Equal(t, 405.0, meal.Calories)
	assert.Equal(t, 11.3, meal.Protein)
	assert.Equal(t, 81.0, meal.Carbs)
	assert.Len(t, meal.Items, 2)
	assert.NotEmpty(t, meal.Analysis)
	assert.True(t, meal.EatenAt.Equal(ts.clock.Now()))

	require.Equal(t, 1, gen.callCount())
	assert.Contains(t, gen.calls[0].User, "oatmeal with a banana")
	assert.Empty(t, gen.calls[0].ImageURL)

	// pending meals never count towards stats
	stats, err := ts.nutrition.DailyStats(context.Background(), user.ID, ts.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.MealCount)
}

func TestMealAnalyze_PhotoSource(t *testing.T) {
	gen := &fakeGenerator{response: cannedMeal}
	ts, svc := newMealService(t, gen)
	user := createUser(t, ts.db, 6002)

	meal, err := svc.Analyze(context.Background(), user.ID, AnalyzeRequest{ImageURL: "https://cdn.example.com/meals/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.MealSourcePhoto, meal.Source)
	assert.Equal(t, "https://cdn.example.com/meals/a.jpg", meal.ImageURL)
	assert.Equal(t, "https://cdn.example.com/meals/a.jpg", gen.calls[0].ImageURL)
}

func TestMealAnalyze_Errors(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: `{"name":"","items":[]}`})
	user := createUser(t, ts.db, 6003)

	_, err := svc.Analyze(context.Background(), user.ID, AnalyzeRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Analyze(context.Background(), user.ID, AnalyzeRequest{Text: "a picture of my cat"})
	assert.ErrorIs(t, err, ErrLLMUnavailable)

	failing := NewMealService(ts.db, ts.gamification, &fakeGenerator{err: ErrLLMUnavailable}, ts.clock, moscow)
	_, err = failing.Analyze(context.Background(), user.ID, AnalyzeRequest{Text: "soup"})
	assert.True(t, errors.Is(err, ErrLLMUnavailable))

	var count int64
	require.NoError(t, ts.db.Model(&models.Meal{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMealConfirm_AwardsOnce(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{})
	ctx := context.Background()
	user := createUser(t, ts.db, 6004)

	meal, err := svc.CreatePending(ctx, user.ID, MealInput{Name: "Soup", Calories: ptr(250.0), Protein: ptr(12.0)})
	require.NoError(t, err)

	confirmed, result, err := svc.Confirm(ctx, user.ID, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MealStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, 10, result.XPGained)
	assert.Equal(t, 1, result.NewStreak)

	_, result, err = svc.Confirm(ctx, user.ID, meal.ID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.Zero(t, result.XPGained)

	assert.Equal(t, 10, reloadUser(t, ts.db, user.ID).XP)

	stats, err := ts.nutrition.DailyStats(ctx, user.ID, ts.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MealCount)
	assert.Equal(t, 250.0, stats.Calories)
}

func TestMealConfirm_OtherUsersMeal(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{})
	ctx := context.Background()
	owner := createUser(t, ts.db, 6005)
	other := createUser(t, ts.db, 6006)

	meal, err := svc.CreatePending(ctx, owner.ID, MealInput{Name: "Soup", Calories: ptr(250.0)})
	require.NoError(t, err)

	_, _, err = svc.Confirm(ctx, other.ID, meal.ID)
	assert.ErrorIs(t, err, ErrMealNotFound)
	assert.Zero(t, reloadUser(t, ts.db, other.ID).XP)
}

func TestMealUpdate_RecomputesTotalsFromItems(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: cannedMeal})
	ctx := context.Background()
	user := createUser(t, ts.db, 6007)

	meal, err := svc.Analyze(ctx, user.ID, AnalyzeRequest{Text: "oatmeal"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, meal.ID, MealInput{Items: []MealItemInput{
		{Name: "Oatmeal", Grams: 150, Calories: 180, Protein: 6, Carbs: 32, Fat: 3.5},
	}})
	require.NoError(t, err)

	assert.Equal(t, "Oatmeal breakfast", updated.Name)
	assert.Equal(t, 180.0, updated.Calories)
	assert.Equal(t, 6.0, updated.Protein)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 150.0, updated.Items[0].Grams)
	assert.Equal(t, models.MealStatusPending, updated.Status)

	var items int64
	require.NoError(t, ts.db.Model(&models.MealItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), items)
}

func TestMealUpdate_MacrosWithoutItems(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{})
	ctx := context.Background()
	user := createUser(t, ts.db, 6008)

	meal, err := svc.CreatePending(ctx, user.ID, MealInput{Name: "Salad", Calories: ptr(120.0), Protein: ptr(4.0)})
	require.NoError(t, err)

	eaten := at(2025, 3, 10, 7, 0)
	updated, err := svc.Update(ctx, user.ID, meal.ID, MealInput{Name: "Greek salad", Calories: ptr(310.26), Fat: ptr(25.0)})
	require.NoError(t, err)
	assert.Equal(t, "Greek salad", updated.Name)
	assert.Equal(t, 310.3, updated.Calories)
	assert.Equal(t, 25.0, updated.Fat)
	assert.Equal(t, 4.0, updated.Protein)

	updated, err = svc.Update(ctx, user.ID, meal.ID, MealInput{EatenAt: &eaten})
	require.NoError(t, err)
	assert.True(t, updated.EatenAt.Equal(eaten))
	assert.Equal(t, 310.3, updated.Calories)
	assert.Equal(t, 25.0, updated.Fat)
}

func TestMealUpdate_NameOnlyKeepsTotalsAndItems(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: cannedMeal})
	ctx := context.Background()
	user := createUser(t, ts.db, 6012)

	meal, err := svc.Analyze(ctx, user.ID, AnalyzeRequest{Text: "oatmeal"})
	require.NoError(t, err)
	_, _, err = svc.Confirm(ctx, user.ID, meal.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, meal.ID, MealInput{Name: "Soup"})
	require.NoError(t, err)
	assert.Equal(t, "Soup", updated.Name)
	assert.Equal(t, 405.0, updated.Calories)
	assert.Equal(t, 11.3, updated.Protein)
	assert.Equal(t, 81.0, updated.Carbs)
	assert.Equal(t, meal.Fat, updated.Fat)
	assert.Len(t, updated.Items, 2)

	stats, err := ts.nutrition.DailyStats(ctx, user.ID, ts.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 405.0, stats.Calories)
}

func TestMealUpdate_MacrosReplaceItems(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: cannedMeal})
	ctx := context.Background()
	user := createUser(t, ts.db, 6013)

	meal, err := svc.Analyze(ctx, user.ID, AnalyzeRequest{Text: "oatmeal"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, meal.ID, MealInput{Calories: ptr(350.0)})
	require.NoError(t, err)
	assert.Equal(t, 350.0, updated.Calories)
	assert.Equal(t, 11.3, updated.Protein)
	assert.Empty(t, updated.Items)
}

func TestMealConfirm_FailedAwardLeavesMealPending(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: cannedMeal})
	ctx := context.Background()
	user := createUser(t, ts.db, 6014)

	meal, err := svc.Analyze(ctx, user.ID, AnalyzeRequest{Text: "oatmeal"})
	require.NoError(t, err)

	// XP ledger insert fails inside the award
	require.NoError(t, ts.db.Migrator().DropTable(&models.XPEvent{}))
	_, _, err = svc.Confirm(ctx, user.ID, meal.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyConfirmed)

	stored, err := svc.Get(ctx, user.ID, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MealStatusPending, stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
	reloaded := reloadUser(t, ts.db, user.ID)
	assert.Zero(t, reloaded.XP)
	assert.Zero(t, reloaded.CurrentStreak)

	// retry succeeds once the store is back
	require.NoError(t, ts.db.AutoMigrate(&models.XPEvent{}))
	confirmed, result, err := svc.Confirm(ctx, user.ID, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MealStatusConfirmed, confirmed.Status)
	assert.Equal(t, 10, result.XPGained)
	assert.Equal(t, 10, reloadUser(t, ts.db, user.ID).XP)
}

func TestMealDelete(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{response: cannedMeal})
	ctx := context.Background()
	user := createUser(t, ts.db, 6009)

	meal, err := svc.Analyze(ctx, user.ID, AnalyzeRequest{Text: "oatmeal"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID, meal.ID))
	assert.ErrorIs(t, svc.Delete(ctx, user.ID, meal.ID), ErrMealNotFound)

	_, err = svc.Get(ctx, user.ID, meal.ID)
	assert.ErrorIs(t, err, ErrMealNotFound)

	var items int64
	require.NoError(t, ts.db.Model(&models.MealItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestMealListForDay(t *testing.T) {
	ts, svc := newMealService(t, &fakeGenerator{})
	ctx := context.Background()
	user := createUser(t, ts.db, 6010)

	createConfirmedMeal(t, ts.db, user.ID, at(2025, 3, 10, 13, 0), 600)
	createConfirmedMeal(t, ts.db, user.ID, at(2025, 3, 9, 23, 30), 200)
	eaten := at(2025, 3, 10, 8, 0)
	_, err := svc.CreatePending(ctx, user.ID, MealInput{Name: "Tea", Calories: ptr(20.0), EatenAt: &eaten})
	require.NoError(t, err)

	meals, err := svc.ListForDay(ctx, user.ID, at(2025, 3, 10, 0, 0))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "Tea", meals[0].Name)
	assert.Equal(t, models.MealStatusConfirmed, meals[1].Status)
}
