package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"nutridiary/config"
	"nutridiary/controllers"
	"nutridiary/docstore"
	"nutridiary/identity"
	"nutridiary/kvstore"
	"nutridiary/middlewares"
	"nutridiary/routes"
	"nutridiary/services"
	"nutridiary/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("nutridiary stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	store := docstore.NewGormStore(db)

	kv, err := kvstore.NewByBackend(cfg.KVOptions())
	if err != nil {
		return err
	}

	remote := identity.NewHTTPProvider(cfg.IdentityURL, &http.Client{Timeout: cfg.IdentityTimeout}, kv, log.WithField("component", "identity"))

	diary := services.NewDiaryService(store, log.WithField("component", "diary"))
	profiles := services.NewProfileService(store, log.WithField("component", "profile"))
	stats := services.NewStatisticsService(diary, log.WithField("component", "statistics"))
	progress := services.NewProgressService(diary, profiles)
	cache := services.NewAuthCache(kv, remote, log.WithField("component", "auth_cache"))
	state := services.NewAuthStateManager(cache, remote, profiles, log.WithField("component", "auth_state"))
	defer state.Close()

	hub := services.NewRealtimeHub()
	states, unsubscribe := state.Subscribe()
	defer unsubscribe()
	go hub.Follow(states)

	var images controllers.ImageStore
	if cfg.S3Bucket != "" {
		up, err := utils.NewS3ImageUploader(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return err
		}
		images = up
	} else {
		log.Warn("S3_BUCKET not set, dish image upload disabled")
	}

	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log.WithField("component", "ratelimit"))
	limiter.StartCleanup(10*time.Minute, 10000, ctx.Done())

	if err := state.CheckUserState(ctx); err != nil {
		log.WithError(err).Warn("initial auth state check failed")
	}

	// keep the token fresh and the published state honest while the app runs
	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileSchedule, func() {
		if err := remote.Refresh(ctx); err != nil {
			log.WithError(err).Warn("token refresh failed")
		}
		if err := state.CheckUserState(ctx); err != nil {
			log.WithError(err).Warn("auth state reconcile failed")
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := routes.SetupRouter(routes.NewDeps(remote, cache, state, hub, diary, profiles, stats, progress, images, limiter))
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
