package main

import (
	"silvalley/internal/users/handler"
	"silvalley/internal/users/repository"
	"silvalley/internal/users/service"
	"silvalley/internal/users/validator"
	"silvalley/pkg/app"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Users service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	userService := initServices(cfg, tokens)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewUserHandler(userService, cfg.Log), tokens)
	serverApp.Run()
}

func initServices(cfg *config.Config, tokens *auth.TokenService) service.UserService {
	userValidator := validator.NewUserValidator()
	userRepo := repository.NewMongoUserRepository(cfg)
	userService := service.NewUserService(
		userRepo,
		userValidator,
		tokens,
		cfg,
	)

	cfg.Log.Info("User service initialized", "database", cfg.MongoDatabaseName)
	return userService
}
