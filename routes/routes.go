package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/controllers"
	"nutridiary/metrics"
	"nutridiary/middlewares"
	"nutridiary/services"
)

// Deps carries everything the router wires into controllers.
type Deps struct {
	Auth       *controllers.AuthController
	Realtime   *controllers.RealtimeController
	Profile    *controllers.ProfileController
	Diary      *controllers.DiaryController
	Images     *controllers.ImageUploadController
	Statistics *controllers.StatisticsController
	Progress   *controllers.ProgressController

	Sessions    middlewares.SessionSource
	RateLimiter *middlewares.RateLimiter
}

// NewDeps builds the controllers from the service layer. images may be nil
// when no bucket is configured.
func NewDeps(
	identity controllers.SignInClient,
	cache *services.AuthCache,
	state *services.AuthStateManager,
	hub *services.RealtimeHub,
	diary *services.DiaryService,
	profiles *services.ProfileService,
	stats *services.StatisticsService,
	progress *services.ProgressService,
	images controllers.ImageStore,
	limiter *middlewares.RateLimiter,
) Deps {
	return Deps{
		Auth:        controllers.NewAuthController(identity, state, cache),
		Realtime:    controllers.NewRealtimeController(hub),
		Profile:     controllers.NewProfileController(profiles, state),
		Diary:       controllers.NewDiaryController(diary, stats),
		Images:      controllers.NewImageUploadController(images),
		Statistics:  controllers.NewStatisticsController(stats, profiles),
		Progress:    controllers.NewProgressController(progress),
		Sessions:    cache,
		RateLimiter: limiter,
	}
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.Metrics())
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Handler())
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/login", d.Auth.Login)
		auth.POST("/logout", d.Auth.Logout)
		auth.GET("/state", d.Auth.GetState)
		auth.POST("/state/check", d.Auth.CheckState)
		auth.GET("/state/ws", d.Realtime.AuthStateWS)
	}

	// Signed-in routes
	api := r.Group("/")
	api.Use(middlewares.RequireSession(d.Sessions))
	{
		api.GET("/profile", d.Profile.GetProfile)
		api.PUT("/profile/targets", d.Profile.UpdateTargets)

		api.GET("/diary", d.Diary.GetRange)
		api.GET("/diary/week", d.Diary.GetWeek)
		api.POST("/diary/images", d.Images.UploadDishImage)
		api.GET("/diary/:date", d.Diary.GetDay)
		api.GET("/diary/:date/:meal", d.Diary.GetMeal)
		api.POST("/diary/:date/:meal", d.Diary.AddDish)
		api.PUT("/diary/:date/:meal/:dishId", d.Diary.UpdateDish)
		api.DELETE("/diary/:date/:meal/:dishId", d.Diary.RemoveDish)

		api.GET("/statistics/daily", d.Statistics.Daily)
		api.GET("/statistics/weekly", d.Statistics.Weekly)
		api.GET("/statistics/period/:period", d.Statistics.Period)

		api.GET("/progress/calories", d.Progress.Calories)
		api.GET("/progress/nutrition", d.Progress.Nutrition)
	}

	return r
}
