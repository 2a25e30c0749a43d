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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dwave-examples/employee-scheduling/internal/jobs"
	"github.com/dwave-examples/employee-scheduling/internal/metrics"
	"github.com/dwave-examples/employee-scheduling/pkg/auth"
	"github.com/dwave-examples/employee-scheduling/pkg/database"
	"github.com/dwave-examples/employee-scheduling/pkg/handlers"
	"github.com/dwave-examples/employee-scheduling/pkg/solver"
)

func main() {
	// Load .env if it exists. Try root and parent directories for
	// flexibility.
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	if err := auth.EnsureAdminExists(db); err != nil {
		log.Warnw("could not ensure admin user", "error", err)
	}

	// SOLVER_URL points at the external hybrid-solver service; without
	// it the in-process best-effort solver is used.
	var slv solver.Solver
	if url := os.Getenv("SOLVER_URL"); url != "" {
		slv = solver.NewRemote(url, os.Getenv("SOLVER_API_KEY"), log)
		log.Infow("using remote solver", "url", url)
	} else {
		slv = solver.NewLocal(10*time.Second, 0)
		log.Infow("using local best-effort solver")
	}

	runner := jobs.NewRunner(slv, log)
	h := &handlers.Handler{DB: db, Runner: runner, Log: log}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Workforce Scheduling API",
			"version": "1.2.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule", h.Schedule)
		api.POST("/schedule/cancel", h.CancelSolve)
		api.POST("/validate", h.ValidateInput)
		api.GET("/solves", h.ListSolves)
		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		runner.Cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalw("server exited", "error", err)
	}
}
