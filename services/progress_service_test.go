package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutridiary/docstore/docstoretest"
	"nutridiary/models"
)

func TestProgress(t *testing.T) {
	st, _ := docstoretest.NewSQLite(t)
	log, _ := test.NewNullLogger()
	diary := NewDiaryService(st, log)
	profiles := NewProfileService(st, log)
	ctx := context.Background()
	const uid, date = "u1", "2025-01-10"

	progress := NewProgressService(diary, profiles)

	_, err := progress.CaloriesProgress(ctx, uid, date)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, profiles.SaveTargets(ctx, uid, models.Targets{
		TargetCalories: 2000,
		Macros:         &models.MacroTargets{Carb: 250, Protein: 100, Fat: 70},
	}))
	require.NoError(t, diary.AddDish(ctx, uid, date, models.Lunch, dish("a", "Pasta", 1200)))
	require.NoError(t, diary.AddDish(ctx, uid, date, models.Dinner, dish("b", "Cake", 1000)))

	cal, err := progress.CaloriesProgress(ctx, uid, date)
	require.NoError(t, err)
	assert.Equal(t, models.CaloriesProgress{Date: date, Consumed: 2200, Target: 2000, Remaining: -200}, *cal)

	nut, err := progress.NutritionProgress(ctx, uid, date)
	require.NoError(t, err)
	assert.Equal(t, models.MacroTargets{Carb: 250, Protein: 100, Fat: 70}, nut.Target)
	assert.Equal(t, models.NutritionData{Calories: 2200, Carb: 20, Protein: 10, Fat: 4}, nut.Consumed)
	assert.Equal(t, models.MacroTargets{Carb: 230, Protein: 90, Fat: 66}, nut.Remaining)
}
