package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nutridiary/models"
	"nutridiary/services"
	"nutridiary/utils"
)

type StatisticsController struct {
	Stats    *services.StatisticsService
	Profiles *services.ProfileService
	Now      func() time.Time
}

func NewStatisticsController(stats *services.StatisticsService, profiles *services.ProfileService) *StatisticsController {
	return &StatisticsController{Stats: stats, Profiles: profiles, Now: time.Now}
}

func today(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return utils.FormatDate(now())
}

// weekStartParam reads a week start date from the query, defaulting to the
// Monday of the current week.
func weekStartParam(c *gin.Context, key string) (string, error) {
	v := c.Query(key)
	if v == "" {
		return utils.StartOfWeek(today(nil))
	}
	if _, err := utils.ParseDate(v); err != nil {
		return "", fmt.Errorf("%w: %v", services.ErrInvalidArgument, err)
	}
	return v, nil
}

// targetCalories takes ?target= when given, else the profile target.
// A user without a profile has no target yet.
func (h *StatisticsController) targetCalories(ctx context.Context, c *gin.Context, uid string) (int, error) {
	if v := c.Query("target"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: invalid target %q", services.ErrInvalidArgument, v)
		}
		return n, nil
	}
	n, err := h.Profiles.TargetCalories(ctx, uid)
	if errors.Is(err, services.ErrProfileNotFound) {
		return 0, nil
	}
	return n, err
}

func (h *StatisticsController) Daily(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	ctx := c.Request.Context()
	target, err := h.targetCalories(ctx, c, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Stats.DailyStatistics(ctx, uid, c.DefaultQuery("date", today(h.Now)), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *StatisticsController) Weekly(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	ctx := c.Request.Context()
	start, err := weekStartParam(c, "week_start")
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := h.targetCalories(ctx, c, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Stats.WeeklyStatistics(ctx, uid, start, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *StatisticsController) Period(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	ctx := c.Request.Context()
	period, err := models.ParseStatisticsPeriod(c.Param("period"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	target, err := h.targetCalories(ctx, c, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Stats.StatisticsForPeriod(ctx, uid, period, c.DefaultQuery("today", today(h.Now)), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
