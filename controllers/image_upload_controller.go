package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/utils"
)

// ImageStore uploads a base64 data URI and returns its public URL.
type ImageStore interface {
	UploadDishImage(ctx context.Context, userID, dataURI string) (string, error)
}

type ImageUploadController struct {
	Images ImageStore
}

func NewImageUploadController(images ImageStore) *ImageUploadController {
	return &ImageUploadController{Images: images}
}

type DishImageRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// UploadDishImage stores a dish picture; the returned url goes into Dish.Image.
func (h *ImageUploadController) UploadDishImage(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}
	var req DishImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if _, _, _, err := utils.DecodeDataURI(req.ImageBase64); err != nil {
		badRequest(c, err.Error())
		return
	}
	uid, _ := userIDFromCtx(c)
	url, err := h.Images.UploadDishImage(c.Request.Context(), uid, req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
