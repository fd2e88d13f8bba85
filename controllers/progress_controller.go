package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutridiary/services"
)

type ProgressController struct {
	Progress *services.ProgressService
	Now      func() time.Time
}

func NewProgressController(progress *services.ProgressService) *ProgressController {
	return &ProgressController{Progress: progress, Now: time.Now}
}

func (h *ProgressController) Calories(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	out, err := h.Progress.CaloriesProgress(c.Request.Context(), uid, c.DefaultQuery("date", today(h.Now)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProgressController) Nutrition(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	out, err := h.Progress.NutritionProgress(c.Request.Context(), uid, c.DefaultQuery("date", today(h.Now)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
