package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutridiary/models"
)

// flakyReader fails reads of the listed dates.
type flakyReader struct {
	MealReader
	failing map[string]bool
}

func (f flakyReader) GetMealsByDate(ctx context.Context, userID, date string) (models.DailyMeals, error) {
	if f.failing[date] {
		return models.DailyMeals{}, errors.New("read timeout")
	}
	return f.MealReader.GetMealsByDate(ctx, userID, date)
}

func newStatistics(t *testing.T, failing ...string) (*StatisticsService, *DiaryService) {
	t.Helper()
	diary, _, _, _ := newDiary(t)
	log, _ := test.NewNullLogger()
	f := flakyReader{MealReader: diary, failing: map[string]bool{}}
	for _, d := range failing {
		f.failing[d] = true
	}
	return NewStatisticsService(f, log), diary
}

func TestStatistics_Daily(t *testing.T) {
	stats, diary := newStatistics(t)
	ctx := context.Background()
	const uid, date = "u1", "2025-01-10"
	require.NoError(t, diary.AddDish(ctx, uid, date, models.Breakfast, dish("b", "Eggs", 200)))
	require.NoError(t, diary.AddDish(ctx, uid, date, models.Lunch, dish("l", "Rice", 300)))

	got, err := stats.DailyStatistics(ctx, uid, date, 1000)
	require.NoError(t, err)
	assert.Equal(t, 500, got.TotalCalories)
	assert.Equal(t, 1000, got.TargetCalories)
	assert.InDelta(t, 0.5, got.Progress, 1e-9)
	assert.Equal(t, 20.0, got.Nutrition.Carb)

	require.Len(t, got.MealStatistics, 4)
	byMeal := map[models.MealType]float64{}
	sum := 0.0
	for _, ms := range got.MealStatistics {
		byMeal[ms.MealType] = ms.Percentage
		sum += ms.Percentage
	}
	assert.InDelta(t, 0.4, byMeal[models.Breakfast], 1e-9)
	assert.InDelta(t, 0.6, byMeal[models.Lunch], 1e-9)
	assert.Zero(t, byMeal[models.Dinner])
	assert.Zero(t, byMeal[models.Snacks])
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestStatistics_DailyEmptyAndOverTarget(t *testing.T) {
	empty := DailyStatisticsFor(models.NewDailyMeals("2025-01-10"), 0)
	assert.Zero(t, empty.TotalCalories)
	assert.Zero(t, empty.Progress)
	for _, ms := range empty.MealStatistics {
		assert.Zero(t, ms.Percentage, ms.MealType)
	}

	dm := models.NewDailyMeals("2025-01-10")
	dm.SetDishes(models.Dinner, []models.Dish{dish("d", "Pizza", 1500)})
	over := DailyStatisticsFor(dm, 1000)
	assert.Equal(t, 1.0, over.Progress, "progress is clamped")
}

func TestStatistics_WeeklyDegradesPerDay(t *testing.T) {
	stats, diary := newStatistics(t, "2025-01-08")
	ctx := context.Background()
	const uid = "u1"
	require.NoError(t, diary.AddDish(ctx, uid, "2025-01-06", models.Lunch, dish("a", "A", 400)))
	require.NoError(t, diary.AddDish(ctx, uid, "2025-01-08", models.Lunch, dish("b", "B", 900)))
	require.NoError(t, diary.AddDish(ctx, uid, "2025-01-12", models.Dinner, dish("c", "C", 1000)))

	week, err := stats.WeeklyStatistics(ctx, uid, "2025-01-06", 2000)
	require.NoError(t, err)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2025-01-06", week.WeekStart)

	want := []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10", "2025-01-11", "2025-01-12"}
	for i, d := range week.Days {
		assert.Equal(t, want[i], d.Date)
	}
	assert.Equal(t, 400, week.Days[0].Calories)
	assert.InDelta(t, 0.2, week.Days[0].Progress, 1e-9)
	assert.Zero(t, week.Days[2].Calories, "failed day counts as zero")
	assert.Equal(t, 1000, week.Days[6].Calories)
	assert.Equal(t, 1400, week.TotalCalories)
	assert.InDelta(t, 200.0, week.AverageCalories, 1e-9)

	_, err = stats.WeeklyStatistics(ctx, uid, "not-a-date", 2000)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStatistics_WeeklyCancelled(t *testing.T) {
	stats, _ := newStatistics(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := stats.WeeklyStatistics(ctx, "u1", "2025-01-06", 2000)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestStatistics_MealsForWeek(t *testing.T) {
	stats, diary := newStatistics(t)
	ctx := context.Background()
	require.NoError(t, diary.AddDish(ctx, "u1", "2025-01-09", models.Snacks, dish("s", "Bar", 250)))

	days, err := stats.MealsForWeek(ctx, "u1", "2025-01-06")
	require.NoError(t, err)
	require.Len(t, days, 7)
	for i, dm := range days {
		assert.Len(t, dm.Meals, 4, dm.Date)
		if i == 3 {
			assert.Equal(t, "2025-01-09", dm.Date)
			assert.Len(t, dm.Dishes(models.Snacks), 1)
			continue
		}
		assert.Empty(t, dm.AllDishes(), dm.Date)
	}
}

func TestStatistics_ForPeriod(t *testing.T) {
	stats, diary := newStatistics(t)
	ctx := context.Background()
	require.NoError(t, diary.AddDish(ctx, "u1", "2025-01-09", models.Lunch, dish("y", "Yesterday", 700)))

	today, err := stats.StatisticsForPeriod(ctx, "u1", models.PeriodToday, "2025-01-10", 1400)
	require.NoError(t, err)
	require.NotNil(t, today.Daily)
	assert.Nil(t, today.Weekly)
	assert.Zero(t, today.Daily.TotalCalories)

	yesterday, err := stats.StatisticsForPeriod(ctx, "u1", models.PeriodYesterday, "2025-01-10", 1400)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", yesterday.Daily.Date)
	assert.InDelta(t, 0.5, yesterday.Daily.Progress, 1e-9)

	// 2025-01-10 is a Friday
	week, err := stats.StatisticsForPeriod(ctx, "u1", models.PeriodWeek, "2025-01-10", 1400)
	require.NoError(t, err)
	require.NotNil(t, week.Weekly)
	assert.Equal(t, "2025-01-06", week.Weekly.WeekStart)
	assert.Equal(t, 700, week.Weekly.TotalCalories)

	_, err = stats.StatisticsForPeriod(ctx, "u1", models.StatisticsPeriod("month"), "2025-01-10", 1400)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
