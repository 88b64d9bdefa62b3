package main

import (
	"silvalley/internal/admin/handler"
	"silvalley/internal/admin/repository"
	"silvalley/internal/admin/service"
	"silvalley/pkg/app"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
)

const ServiceName = "admin"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Admin service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	adminService := initServices(cfg)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAdminHandler(adminService, cfg.Log), tokens)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AdminService {
	statsRepo := repository.NewMongoStatsRepository(cfg)
	adminService := service.NewAdminService(statsRepo, cfg)

	cfg.Log.Info("Admin service initialized", "database", cfg.MongoDatabaseName)
	return adminService
}
