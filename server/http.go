package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
	"tutorial-service/config"
	"tutorial-service/handler"
	"tutorial-service/pkg/rabbitmq"
	"tutorial-service/repository"
	"tutorial-service/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer closeDB(ctx, cfg)

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.IsProduction()).Send()
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, err := repository.NewRepo(cfg.DB, gormLogLevel(cfg))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRepo")
		return
	}

	var publisher service.EventPublisher = service.NoopPublisher
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("tutorial events disabled")
	} else {
		p, err := rabbitmq.NewPublisher(conn, cfg.Queue)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("tutorial events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	tutorialService := service.NewService(repo, publisher)
	r := newRouter(ctx, cfg, handler.NewTutorialHandler(tutorialService))

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Err(err).Str("env", cfg.App.Environment).Msg("http server failed")
			cancel()
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("env", cfg.App.Environment).Msg("http server shutdown")
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func newRouter(ctx context.Context, cfg *config.Config, tutorials *handler.TutorialHandler) *gin.Engine {
	r := gin.New()
	r.Use(
		requestLogger(*zerolog.Ctx(ctx)),
		gin.Recovery(),
		corsMiddleware(cfg.Server.CORSOrigins),
	)
	addHealth(r)
	tutorials.Register(r.Group("/api"))
	return r
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.IsDevelop() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}

func gormLogLevel(cfg *config.Config) gormlogger.LogLevel {
	if cfg.App.IsDevelop() {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func closeDB(ctx context.Context, cfg *config.Config) {
	if err := cfg.DB.Close(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close database")
	}
}
