package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"nutridiary/docstore"
	"nutridiary/models"
	"nutridiary/utils"
)

const lbsPerKg = 2.20462

// profileMigration fills one field of a decoded profile from older
// document layouts. Rules run in order and only touch fields still unset.
type profileMigration struct {
	name  string
	apply func(raw []byte, p *models.UserProfile)
}

var profileMigrations = []profileMigration{
	{name: "target-calories", apply: migrateTargetCalories},
	{name: "macro-grams", apply: migrateMacroGrams},
	{name: "weight-kg", apply: migrateWeight},
	{name: "activity-level", apply: migrateActivityLevel},
}

func firstNumber(raw []byte, keys ...string) (gjson.Result, bool) {
	for _, k := range keys {
		if r := gjson.GetBytes(raw, k); r.Exists() && r.Float() != 0 {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func migrateTargetCalories(raw []byte, p *models.UserProfile) {
	if p.TargetCalories != 0 {
		return
	}
	// targetCalories itself is listed for values stored as strings or floats
	if r, ok := firstNumber(raw, "targetCalories", "calorieTarget", "dailyCalories", "goals.calories"); ok {
		p.TargetCalories = int(math.Round(r.Float()))
	}
}

func migrateMacroGrams(raw []byte, p *models.UserProfile) {
	if p.Macros != nil && !p.Macros.IsZero() {
		return
	}
	m := models.MacroTargets{
		Carb:    gjson.GetBytes(raw, "targetCarbs").Float(),
		Protein: gjson.GetBytes(raw, "targetProtein").Float(),
		Fat:     gjson.GetBytes(raw, "targetFat").Float(),
	}
	if !m.IsZero() {
		p.Macros = &m
	}
}

func migrateWeight(raw []byte, p *models.UserProfile) {
	if p.WeightKg != 0 {
		return
	}
	if r, ok := firstNumber(raw, "weight"); ok {
		p.WeightKg = r.Float()
		return
	}
	if r, ok := firstNumber(raw, "weightLbs"); ok {
		p.WeightKg = r.Float() / lbsPerKg
	}
}

func migrateActivityLevel(raw []byte, p *models.UserProfile) {
	if p.ActivityLevel == "" {
		p.ActivityLevel = gjson.GetBytes(raw, "activity").String()
	}
	p.ActivityLevel = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.ActivityLevel)), " ", "_")
}

// decodeProfile tolerates type mismatches left by older clients; the
// migration rules recover what the typed decode could not.
func decodeProfile(raw []byte) (models.UserProfile, error) {
	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return models.UserProfile{}, err
		}
	}
	for _, m := range profileMigrations {
		m.apply(raw, &p)
	}
	return p, nil
}

// ProfileService is the read side of the user profile plus the targets write
// used when onboarding completes.
type ProfileService struct {
	store docstore.Store
	log   logrus.FieldLogger
}

func NewProfileService(store docstore.Store, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{store: store, log: log}
}

func profilePath(userID string) string {
	return docstore.Join("users", userID)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if !validID(userID) {
		return nil, fmt.Errorf("%w: invalid user id %q", ErrInvalidArgument, userID)
	}
	doc, err := s.store.Get(ctx, profilePath(userID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", userID, err)
	}
	p, err := decodeProfile(doc.Data)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("malformed profile document")
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	p.UserID = userID
	return &p, nil
}

// SaveTargets merges calorie and macro targets into the profile document.
func (s *ProfileService) SaveTargets(ctx context.Context, userID string, t models.Targets) error {
	if !validID(userID) {
		return fmt.Errorf("%w: invalid user id %q", ErrInvalidArgument, userID)
	}
	if t.TargetCalories < 0 {
		return fmt.Errorf("%w: target calories must be >= 0", ErrInvalidArgument)
	}
	fields := map[string]any{
		"userId":         userID,
		"targetCalories": t.TargetCalories,
	}
	if t.Macros != nil {
		fields["macros"] = t.Macros
	}
	if t.Split != nil {
		fields["split"] = t.Split
	}
	if err := s.store.Merge(ctx, profilePath(userID), fields); err != nil {
		return fmt.Errorf("save targets %s: %w", userID, err)
	}
	return nil
}

func (s *ProfileService) TargetCalories(ctx context.Context, userID string) (int, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.TargetCalories, nil
}

// MacroTargets returns explicit gram targets, or the split over the calorie target.
func (s *ProfileService) MacroTargets(ctx context.Context, userID string) (models.MacroTargets, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return models.MacroTargets{}, err
	}
	return utils.MacroTargetsFor(*p), nil
}

// IsFullyRegistered treats a non-zero calorie target as finished onboarding.
// A user who deliberately sets a zero target is reported as unregistered.
func (s *ProfileService) IsFullyRegistered(ctx context.Context, userID string) (bool, error) {
	target, err := s.TargetCalories(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return target != 0, nil
}
