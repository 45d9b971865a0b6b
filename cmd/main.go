package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/homesync/homesync-backend/internal/db"
	"github.com/homesync/homesync-backend/internal/handlers"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/middleware"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/realtime/bus"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/server"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on process environment")
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if strings.EqualFold(logMode, "prod") || strings.EqualFold(logMode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtSecret := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	port := utils.GetEnv("PORT", "8080", log)
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	gormDB := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	taskRepo := repos.NewTaskRepo(gormDB, log)
	shoppingItemRepo := repos.NewShoppingItemRepo(gormDB, log)
	householdRepo := repos.NewHouseholdRepo(gormDB, log)
	memberRepo := repos.NewMemberRepo(gormDB, log)

	// Realtime
	log.Info("Setting up change hub...")
	hub := realtime.NewHub(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var changeBus bus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		changeBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Fatal("Redis change bus init failed", "error", err)
		}
		if err := changeBus.StartForwarder(ctx, hub.Publish); err != nil {
			log.Fatal("Redis forwarder start failed", "error", err)
		}
		defer changeBus.Close()
	} else {
		log.Info("REDIS_ADDR not set, change events stay in-process")
	}

	// Services
	log.Info("Setting up services...")
	notifier := services.NewNotifier(log, hub, changeBus)
	taskService := services.NewTaskService(gormDB, log, taskRepo, memberRepo, notifier)
	shoppingService := services.NewShoppingService(gormDB, log, taskRepo, shoppingItemRepo)
	householdService := services.NewHouseholdService(gormDB, log, householdRepo, memberRepo)

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:       middleware.NewAuthMiddleware(log, jwtSecret),
		MembershipMiddleware: middleware.NewMembershipMiddleware(log, householdService),
		TaskHandler:          handlers.NewTaskHandler(taskService),
		ShoppingHandler:      handlers.NewShoppingHandler(shoppingService),
		HouseholdHandler:     handlers.NewHouseholdHandler(householdService),
		ProfileHandler:       handlers.NewProfileHandler(householdService),
		EventsHandler:        handlers.NewEventsHandler(log, hub),
		AllowOrigins:         allowOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
