package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"nutridiary/docstore"
	"nutridiary/metrics"
	"nutridiary/models"
	"nutridiary/utils"
)

// DiaryService stores dishes under users/{uid}/diary/{date}/{mealType}/{dishID}.
// The date document marks that the day has held data, so range queries can
// find it without scanning the meal collections.
type DiaryService struct {
	store docstore.Store
	log   logrus.FieldLogger
}

func NewDiaryService(store docstore.Store, log logrus.FieldLogger) *DiaryService {
	return &DiaryService{store: store, log: log}
}

func diaryCollection(userID string) string {
	return docstore.Join("users", userID, "diary")
}

func datePath(userID, date string) string {
	return docstore.Join(diaryCollection(userID), date)
}

func mealCollection(userID, date string, mt models.MealType) string {
	return docstore.Join(datePath(userID, date), string(mt))
}

func dishPath(userID, date string, mt models.MealType, dishID string) string {
	return docstore.Join(mealCollection(userID, date, mt), dishID)
}

func validateKey(userID, date string, mts ...models.MealType) error {
	if !validID(userID) {
		return fmt.Errorf("%w: invalid user id %q", ErrInvalidArgument, userID)
	}
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	for _, mt := range mts {
		if !mt.Valid() {
			return fmt.Errorf("%w: unknown meal type %q", ErrInvalidArgument, mt)
		}
	}
	return nil
}

func validID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.Contains(id, "/")
}

func (s *DiaryService) logger(userID, date string) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{"user_id": userID, "date": date})
}

// AddDish upserts a dish into one meal bucket.
func (s *DiaryService) AddDish(ctx context.Context, userID, date string, mt models.MealType, dish models.Dish) (err error) {
	defer func() { metrics.RecordDiaryOp("add", err) }()
	if err := validateKey(userID, date, mt); err != nil {
		return err
	}
	if !validID(dish.ID) {
		return fmt.Errorf("%w: invalid dish id %q", ErrInvalidArgument, dish.ID)
	}

	err = s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Merge(ctx, datePath(userID, date), map[string]any{"date": date}); err != nil {
			return err
		}
		return tx.Set(ctx, dishPath(userID, date, mt, dish.ID), dish)
	})
	if err != nil {
		s.logger(userID, date).WithError(err).WithField("meal_type", mt).Error("add dish failed")
		return fmt.Errorf("add dish %s: %w", dish.ID, err)
	}
	return nil
}

// RemoveDish deletes a dish; removing an unknown id succeeds.
func (s *DiaryService) RemoveDish(ctx context.Context, userID, date string, mt models.MealType, dishID string) (err error) {
	defer func() { metrics.RecordDiaryOp("remove", err) }()
	if err := validateKey(userID, date, mt); err != nil {
		return err
	}
	if !validID(dishID) {
		return fmt.Errorf("%w: invalid dish id %q", ErrInvalidArgument, dishID)
	}
	if err = s.store.Delete(ctx, dishPath(userID, date, mt, dishID)); err != nil {
		s.logger(userID, date).WithError(err).WithField("meal_type", mt).Error("remove dish failed")
		return fmt.Errorf("remove dish %s: %w", dishID, err)
	}
	return nil
}

// UpdateDish edits a dish in place, or moves it when the meal type changes.
// A move deletes the old document and creates the new one in a single
// transaction, so the dish is never lost or duplicated.
func (s *DiaryService) UpdateDish(ctx context.Context, userID, date string, originalMT, newMT models.MealType, dish models.Dish) (err error) {
	defer func() { metrics.RecordDiaryOp("update", err) }()
	if err := validateKey(userID, date, originalMT, newMT); err != nil {
		return err
	}
	if !validID(dish.ID) {
		return fmt.Errorf("%w: invalid dish id %q", ErrInvalidArgument, dish.ID)
	}
	log := s.logger(userID, date).WithFields(logrus.Fields{"dish_id": dish.ID, "from": originalMT, "to": newMT})

	if originalMT == newMT {
		err = s.store.Update(ctx, dishPath(userID, date, newMT, dish.ID), dishFields(dish))
		if err != nil {
			log.WithError(err).Error("update dish failed")
			return fmt.Errorf("update dish %s: %w", dish.ID, err)
		}
		return nil
	}

	err = s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Delete(ctx, dishPath(userID, date, originalMT, dish.ID)); err != nil {
			return err
		}
		return tx.Set(ctx, dishPath(userID, date, newMT, dish.ID), dish)
	})
	if err != nil {
		log.WithError(err).Error("move dish failed")
		return fmt.Errorf("move dish %s: %w", dish.ID, err)
	}
	log.Debug("dish moved")
	return nil
}

func dishFields(d models.Dish) map[string]any {
	return map[string]any{
		"id":      d.ID,
		"title":   d.Title,
		"image":   d.Image,
		"kcal":    d.Kcal,
		"carb":    d.Carb,
		"protein": d.Protein,
		"fat":     d.Fat,
		"amount":  d.Amount,
		"unit":    d.Unit,
	}
}

// GetDishesForMeal reads one bucket. Documents that do not decode into a
// valid dish are skipped.
func (s *DiaryService) GetDishesForMeal(ctx context.Context, userID, date string, mt models.MealType) (dishes []models.Dish, err error) {
	defer func() { metrics.RecordDiaryOp("get_meal", err) }()
	if err := validateKey(userID, date, mt); err != nil {
		return nil, err
	}
	return s.readMeal(ctx, userID, date, mt)
}

func (s *DiaryService) readMeal(ctx context.Context, userID, date string, mt models.MealType) ([]models.Dish, error) {
	docs, err := s.store.List(ctx, mealCollection(userID, date, mt))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", date, mt, err)
	}
	dishes := make([]models.Dish, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeDish(doc)
		if err != nil {
			s.logger(userID, date).WithError(err).WithField("path", doc.Path).Warn("skipping malformed dish")
			continue
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func decodeDish(doc docstore.Document) (models.Dish, error) {
	var d models.Dish
	if err := doc.Decode(&d); err != nil {
		return models.Dish{}, err
	}
	if d.ID == "" {
		d.ID = doc.ID
	}
	if err := d.Validate(); err != nil {
		return models.Dish{}, err
	}
	return d, nil
}

// GetMealsByDate reads all four buckets of a date.
func (s *DiaryService) GetMealsByDate(ctx context.Context, userID, date string) (dm models.DailyMeals, err error) {
	defer func() { metrics.RecordDiaryOp("get_day", err) }()
	if err := validateKey(userID, date); err != nil {
		return models.DailyMeals{}, err
	}
	return s.readDay(ctx, userID, date)
}

func (s *DiaryService) readDay(ctx context.Context, userID, date string) (models.DailyMeals, error) {
	dm := models.NewDailyMeals(date)
	for _, mt := range models.MealTypes {
		dishes, err := s.readMeal(ctx, userID, date, mt)
		if err != nil {
			return models.DailyMeals{}, err
		}
		dm.SetDishes(mt, dishes)
	}
	return dm, nil
}

// GetMealsForDateRange returns the stored days in [startDate, endDate].
// Days without dishes are absent, including days whose last dish was removed.
// Any failing day fails the whole call.
func (s *DiaryService) GetMealsForDateRange(ctx context.Context, userID, startDate, endDate string) (out map[string]models.DailyMeals, err error) {
	defer func() { metrics.RecordDiaryOp("get_range", err) }()
	if err := validateKey(userID, startDate); err != nil {
		return nil, err
	}
	if err := validateKey(userID, endDate); err != nil {
		return nil, err
	}
	if endDate < startDate {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidArgument, endDate, startDate)
	}

	docs, err := s.store.ListRange(ctx, diaryCollection(userID), startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list diary dates: %w", err)
	}
	out = make(map[string]models.DailyMeals, len(docs))
	for _, doc := range docs {
		if _, perr := utils.ParseDate(doc.ID); perr != nil {
			continue
		}
		dm, err := s.readDay(ctx, userID, doc.ID)
		if err != nil {
			s.logger(userID, doc.ID).WithError(err).Error("range read failed")
			return nil, err
		}
		if len(dm.AllDishes()) == 0 {
			continue
		}
		out[doc.ID] = dm
	}
	return out, nil
}

// IsInvalidArgument reports whether err came from request validation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
