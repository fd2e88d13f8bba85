package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"nutridiary/models"
	"nutridiary/utils"
)

// MealReader is the read side of the diary used by statistics and progress.
type MealReader interface {
	GetMealsByDate(ctx context.Context, userID, date string) (models.DailyMeals, error)
	GetMealsForDateRange(ctx context.Context, userID, startDate, endDate string) (map[string]models.DailyMeals, error)
}

var _ MealReader = (*DiaryService)(nil)

type StatisticsService struct {
	diary MealReader
	log   logrus.FieldLogger
}

func NewStatisticsService(diary MealReader, log logrus.FieldLogger) *StatisticsService {
	return &StatisticsService{diary: diary, log: log}
}

// DailyStatisticsFor derives the statistics of one loaded day.
func DailyStatisticsFor(dm models.DailyMeals, targetCalories int) *models.DailyNutritionStatistics {
	day := utils.AggregateDay(dm)
	perMeal := utils.AggregateMeals(dm)

	stats := &models.DailyNutritionStatistics{
		Date:           dm.Date,
		TotalCalories:  day.Calories,
		TargetCalories: targetCalories,
		Progress:       utils.ClampedProgress(day.Calories, targetCalories),
		Nutrition:      day,
		MealStatistics: make([]models.MealStatistics, 0, len(models.MealTypes)),
	}
	for _, mt := range models.MealTypes {
		n := perMeal[mt]
		stats.MealStatistics = append(stats.MealStatistics, models.MealStatistics{
			MealType:   mt,
			Nutrition:  n,
			Percentage: utils.Percentage(n.Calories, day.Calories),
		})
	}
	return stats
}

func (s *StatisticsService) DailyStatistics(ctx context.Context, userID, date string, targetCalories int) (*models.DailyNutritionStatistics, error) {
	dm, err := s.diary.GetMealsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("daily statistics %s: %w", date, err)
	}
	return DailyStatisticsFor(dm, targetCalories), nil
}

// WeeklyStatistics reads the seven days concurrently. A day that cannot be
// read counts as zero calories instead of failing the week; a cancelled
// context fails it.
func (s *StatisticsService) WeeklyStatistics(ctx context.Context, userID, weekStart string, targetCalories int) (*models.WeeklyNutritionStatistics, error) {
	dates, err := utils.WeekDates(weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	days := make([]models.DayStatistics, len(dates))
	var wg sync.WaitGroup
	for i, date := range dates {
		days[i] = models.DayStatistics{Date: date}
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()
			dm, err := s.diary.GetMealsByDate(ctx, userID, date)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"date":    date,
				}).Warn("weekly statistics: day unavailable, counting as zero")
				return
			}
			kcal := utils.AggregateDay(dm).Calories
			days[i].Calories = kcal
			days[i].Progress = utils.ClampedProgress(kcal, targetCalories)
		}(i, date)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("weekly statistics %s: %w", weekStart, err)
	}

	week := &models.WeeklyNutritionStatistics{
		TargetCalories: targetCalories,
		WeekStart:      weekStart,
		Days:           days,
	}
	for _, d := range days {
		week.TotalCalories += d.Calories
	}
	week.AverageCalories = float64(week.TotalCalories) / float64(len(days))
	return week, nil
}

// MealsForWeek returns seven DailyMeals in date order; days without entries are empty.
func (s *StatisticsService) MealsForWeek(ctx context.Context, userID, weekStart string) ([]models.DailyMeals, error) {
	dates, err := utils.WeekDates(weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	byDate, err := s.diary.GetMealsForDateRange(ctx, userID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, fmt.Errorf("meals for week %s: %w", weekStart, err)
	}

	out := make([]models.DailyMeals, 0, len(dates))
	for _, d := range dates {
		if dm, ok := byDate[d]; ok {
			out = append(out, dm)
			continue
		}
		out = append(out, models.NewDailyMeals(d))
	}
	return out, nil
}

// StatisticsForPeriod resolves today, yesterday or the Monday-started week
// containing today.
func (s *StatisticsService) StatisticsForPeriod(ctx context.Context, userID string, period models.StatisticsPeriod, today string, targetCalories int) (*models.PeriodStatistics, error) {
	out := &models.PeriodStatistics{Period: period}
	switch period {
	case models.PeriodToday, models.PeriodYesterday:
		date := today
		if period == models.PeriodYesterday {
			d, err := utils.AddDays(today, -1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			}
			date = d
		}
		daily, err := s.DailyStatistics(ctx, userID, date, targetCalories)
		if err != nil {
			return nil, err
		}
		out.Daily = daily
	case models.PeriodWeek:
		start, err := utils.StartOfWeek(today)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		weekly, err := s.WeeklyStatistics(ctx, userID, start, targetCalories)
		if err != nil {
			return nil, err
		}
		out.Weekly = weekly
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidArgument, period)
	}
	return out, nil
}
