package main

import (
	"silvalley/internal/spaces/handler"
	"silvalley/internal/spaces/repository"
	"silvalley/internal/spaces/service"
	"silvalley/internal/spaces/validator"
	"silvalley/pkg/app"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
)

const ServiceName = "spaces"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Spaces service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	spaceService := initServices(cfg)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSpaceHandler(spaceService, cfg.Log), tokens)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SpaceService {
	spaceValidator := validator.NewSpaceValidator()
	spaceRepo := repository.NewMongoSpaceRepository(cfg)
	spaceService := service.NewSpaceService(
		spaceRepo,
		spaceValidator,
		cfg,
	)

	cfg.Log.Info("Space service initialized", "database", cfg.MongoDatabaseName)
	return spaceService
}
