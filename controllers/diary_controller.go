package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/models"
	"nutridiary/services"
)

type DiaryController struct {
	Diary *services.DiaryService
	Stats *services.StatisticsService
}

func NewDiaryController(diary *services.DiaryService, stats *services.StatisticsService) *DiaryController {
	return &DiaryController{Diary: diary, Stats: stats}
}

// DishInput is the body of create and edit calls. MealType on an edit moves
// the dish to another bucket of the same date.
type DishInput struct {
	Title    string      `json:"title" binding:"required"`
	Image    string      `json:"image"`
	Kcal     int         `json:"kcal"`
	Carb     float64     `json:"carb"`
	Protein  float64     `json:"protein"`
	Fat      float64     `json:"fat"`
	Amount   float64     `json:"amount"`
	Unit     models.Unit `json:"unit" binding:"required"`
	MealType string      `json:"meal_type"`
}

// dish builds the domain value; an empty id assigns a fresh one.
func (in DishInput) dish(id string) (models.Dish, error) {
	d := models.NewDish(in.Title, in.Kcal, in.Carb, in.Protein, in.Fat, in.Amount, in.Unit)
	d.Image = in.Image
	if id != "" {
		d.ID = id
	}
	if err := d.Validate(); err != nil {
		return models.Dish{}, fmt.Errorf("%w: %v", services.ErrInvalidArgument, err)
	}
	return d, nil
}

func mealParam(c *gin.Context) (models.MealType, bool) {
	mt, err := models.ParseMealType(c.Param("meal"))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return mt, true
}

func (h *DiaryController) GetDay(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	dm, err := h.Diary.GetMealsByDate(c.Request.Context(), uid, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dm)
}

func (h *DiaryController) GetMeal(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	mt, ok := mealParam(c)
	if !ok {
		return
	}
	dishes, err := h.Diary.GetDishesForMeal(c.Request.Context(), uid, c.Param("date"), mt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Param("date"), "meal_type": mt, "dishes": dishes})
}

func (h *DiaryController) AddDish(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	mt, ok := mealParam(c)
	if !ok {
		return
	}
	var in DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := in.dish("")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Diary.AddDish(c.Request.Context(), uid, c.Param("date"), mt, d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DiaryController) UpdateDish(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	from, ok := mealParam(c)
	if !ok {
		return
	}
	var in DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	to := from
	if in.MealType != "" {
		mt, err := models.ParseMealType(in.MealType)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		to = mt
	}
	d, err := in.dish(c.Param("dishId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Diary.UpdateDish(c.Request.Context(), uid, c.Param("date"), from, to, d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_type": to, "dish": d})
}

func (h *DiaryController) RemoveDish(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	mt, ok := mealParam(c)
	if !ok {
		return
	}
	if err := h.Diary.RemoveDish(c.Request.Context(), uid, c.Param("date"), mt, c.Param("dishId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRange answers GET /diary?from=...&to=... with the stored days only.
func (h *DiaryController) GetRange(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		badRequest(c, "from and to are required")
		return
	}
	days, err := h.Diary.GetMealsForDateRange(c.Request.Context(), uid, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "days": days})
}

// GetWeek returns seven days from start, empty days included.
func (h *DiaryController) GetWeek(c *gin.Context) {
	uid, _ := userIDFromCtx(c)
	start, err := weekStartParam(c, "start")
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := h.Stats.MealsForWeek(c.Request.Context(), uid, start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"week_start": start, "days": days})
}
