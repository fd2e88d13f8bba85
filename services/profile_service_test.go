package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutridiary/docstore"
	"nutridiary/docstore/docstoretest"
	"nutridiary/models"
)

func newProfiles(t *testing.T) (*ProfileService, docstore.Store) {
	t.Helper()
	st, _ := docstoretest.NewSQLite(t)
	log, _ := test.NewNullLogger()
	return NewProfileService(st, log), st
}

func TestProfileMigrations(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		check func(t *testing.T, p models.UserProfile)
	}{
		{
			name: "current layout untouched",
			raw:  `{"targetCalories":2200,"weightKg":70,"activityLevel":"moderate"}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 2200, p.TargetCalories)
				assert.Equal(t, 70.0, p.WeightKg)
				assert.Equal(t, "moderate", p.ActivityLevel)
			},
		},
		{
			name: "calorieTarget",
			raw:  `{"calorieTarget":1800}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 1800, p.TargetCalories)
			},
		},
		{
			name: "dailyCalories when calorieTarget is zero",
			raw:  `{"calorieTarget":0,"dailyCalories":1900}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 1900, p.TargetCalories)
			},
		},
		{
			name: "nested goals.calories",
			raw:  `{"goals":{"calories":2500}}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 2500, p.TargetCalories)
			},
		},
		{
			name: "targetCalories stored as string",
			raw:  `{"targetCalories":"2100"}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 2100, p.TargetCalories)
			},
		},
		{
			name: "legacy macro grams",
			raw:  `{"targetCarbs":250,"targetProtein":110,"targetFat":60}`,
			check: func(t *testing.T, p models.UserProfile) {
				require.NotNil(t, p.Macros)
				assert.Equal(t, models.MacroTargets{Carb: 250, Protein: 110, Fat: 60}, *p.Macros)
			},
		},
		{
			name: "weight in kg",
			raw:  `{"weight":82.5}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, 82.5, p.WeightKg)
			},
		},
		{
			name: "weight in lbs",
			raw:  `{"weightLbs":220.462}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.InDelta(t, 100.0, p.WeightKg, 0.001)
			},
		},
		{
			name: "legacy activity",
			raw:  `{"activity":"Very Active"}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, "very_active", p.ActivityLevel)
			},
		},
		{
			name: "activity level lower-cased",
			raw:  `{"activityLevel":"Light"}`,
			check: func(t *testing.T, p models.UserProfile) {
				assert.Equal(t, "light", p.ActivityLevel)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := decodeProfile([]byte(tc.raw))
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestDecodeProfile_RejectsNonJSON(t *testing.T) {
	_, err := decodeProfile([]byte(`not json`))
	assert.Error(t, err)
}

func TestProfileService_GetProfile(t *testing.T) {
	svc, st := newProfiles(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, st.Set(ctx, profilePath("u1"), map[string]any{"email": "a@b.c", "calorieTarget": 2000}))
	p, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "a@b.c", p.Email)
	assert.Equal(t, 2000, p.TargetCalories)
}

func TestProfileService_SaveTargetsAndRegistration(t *testing.T) {
	svc, st := newProfiles(t)
	ctx := context.Background()

	full, err := svc.IsFullyRegistered(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, full, "no profile yet")

	require.NoError(t, st.Set(ctx, profilePath("u1"), map[string]any{"email": "a@b.c", "goal": "lose"}))
	full, err = svc.IsFullyRegistered(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, full)

	require.NoError(t, svc.SaveTargets(ctx, "u1", models.Targets{TargetCalories: 2000}))
	full, err = svc.IsFullyRegistered(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, full)

	p, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", p.Email, "merge keeps existing fields")

	// lose split 0.4/0.3/0.3 over 2000 kcal
	m, err := svc.MacroTargets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.MacroTargets{Carb: 200, Protein: 150, Fat: 66.7}, m)

	require.NoError(t, svc.SaveTargets(ctx, "u1", models.Targets{
		TargetCalories: 2000,
		Macros:         &models.MacroTargets{Carb: 220, Protein: 140, Fat: 60},
	}))
	m, err = svc.MacroTargets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.MacroTargets{Carb: 220, Protein: 140, Fat: 60}, m)

	assert.ErrorIs(t, svc.SaveTargets(ctx, "u1", models.Targets{TargetCalories: -1}), ErrInvalidArgument)
}
