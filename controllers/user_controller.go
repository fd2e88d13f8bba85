package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/models"
	"nutridiary/services"
)

type ProfileController struct {
	Profiles *services.ProfileService
	State    *services.AuthStateManager
}

func NewProfileController(profiles *services.ProfileService, state *services.AuthStateManager) *ProfileController {
	return &ProfileController{Profiles: profiles, State: state}
}

func (h *ProfileController) GetProfile(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	profile, err := h.Profiles.GetProfile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateTargets saves calorie and macro targets. Saving a non-zero calorie
// target completes onboarding, which the published auth state reflects.
func (h *ProfileController) UpdateTargets(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	var input models.Targets
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Profiles.SaveTargets(c.Request.Context(), uid, input); err != nil {
		respondError(c, err)
		return
	}
	h.State.UpdateFullyRegistered(input.TargetCalories != 0)
	c.JSON(http.StatusOK, gin.H{"message": "targets updated", "targets": input})
}
