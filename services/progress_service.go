package services

import (
	"context"
	"fmt"

	"nutridiary/models"
	"nutridiary/utils"
)

// TargetSource supplies the user's calorie and macro targets.
type TargetSource interface {
	TargetCalories(ctx context.Context, userID string) (int, error)
	MacroTargets(ctx context.Context, userID string) (models.MacroTargets, error)
}

var _ TargetSource = (*ProfileService)(nil)

type ProgressService struct {
	diary   MealReader
	targets TargetSource
}

func NewProgressService(diary MealReader, targets TargetSource) *ProgressService {
	return &ProgressService{diary: diary, targets: targets}
}

func (s *ProgressService) CaloriesProgress(ctx context.Context, userID, date string) (*models.CaloriesProgress, error) {
	dm, err := s.diary.GetMealsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("calories progress %s: %w", date, err)
	}
	target, err := s.targets.TargetCalories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("calories progress %s: %w", date, err)
	}
	consumed := utils.AggregateDay(dm).Calories
	return &models.CaloriesProgress{
		Date:      date,
		Consumed:  consumed,
		Target:    target,
		Remaining: target - consumed,
	}, nil
}

func (s *ProgressService) NutritionProgress(ctx context.Context, userID, date string) (*models.NutritionProgress, error) {
	dm, err := s.diary.GetMealsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("nutrition progress %s: %w", date, err)
	}
	target, err := s.targets.MacroTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("nutrition progress %s: %w", date, err)
	}
	consumed := utils.AggregateDay(dm)
	return &models.NutritionProgress{
		Date:     date,
		Target:   target,
		Consumed: consumed,
		Remaining: models.MacroTargets{
			Carb:    target.Carb - consumed.Carb,
			Protein: target.Protein - consumed.Protein,
			Fat:     target.Fat - consumed.Fat,
		},
	}, nil
}
