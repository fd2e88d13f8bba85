package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/identity"
	"nutridiary/models"
	"nutridiary/services"
)

// SignInClient is the part of the identity adapter that starts and ends sessions.
type SignInClient interface {
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
	SignOut(ctx context.Context)
}

type AuthController struct {
	Identity SignInClient
	State    *services.AuthStateManager
	Cache    *services.AuthCache
}

func NewAuthController(id SignInClient, state *services.AuthStateManager, cache *services.AuthCache) *AuthController {
	return &AuthController{Identity: id, State: state, Cache: cache}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authStateResponse struct {
	State  models.UserAuthState `json:"state"`
	UserID string               `json:"user_id,omitempty"`
	Email  string               `json:"email,omitempty"`
}

func (h *AuthController) stateResponse(ctx context.Context) authStateResponse {
	out := authStateResponse{State: h.State.State()}
	if out.State.IsLoggedIn() {
		if rec, ok := h.Cache.Record(ctx); ok {
			out.UserID, out.Email = rec.UserID, rec.Email
		}
	}
	return out
}

// Login signs in with the identity provider. The provider's session change
// updates the cache and the published state before this returns.
func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.Identity.SignIn(c.Request.Context(), input.Email, input.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.stateResponse(c.Request.Context()))
}

func (h *AuthController) Logout(c *gin.Context) {
	h.Identity.SignOut(c.Request.Context())
	c.JSON(http.StatusOK, h.stateResponse(c.Request.Context()))
}

func (h *AuthController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateResponse(c.Request.Context()))
}

// CheckState re-runs the login check and returns the resulting state.
func (h *AuthController) CheckState(c *gin.Context) {
	if err := h.State.CheckUserState(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.stateResponse(c.Request.Context()))
}
