package router

import (
	"context"
	"log/slog"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/urbano-social/backend/internal/auth"
	"github.com/urbano-social/backend/internal/handlers"
	"github.com/urbano-social/backend/internal/middleware"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
	"github.com/urbano-social/backend/internal/services"
	"github.com/urbano-social/backend/internal/validators"
	"github.com/urbano-social/backend/pkg/config"
)

// Dependencies carries everything the router needs to wire the application.
type Dependencies struct {
	Config         *config.Config
	DB             *config.DB
	FirebaseClient *firebaseauth.Client
	Logger         *slog.Logger
}

// SetupRouter builds the echo instance with every route and its dependencies.
func SetupRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			deps.Logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))
	e.Use(echomw.CORS())

	// Repositories
	userRepo := repositories.NewMongoUserRepository(deps.DB.Database)
	postRepo := repositories.NewMongoPostRepository(deps.DB.Database)
	commentRepo := repositories.NewMongoCommentRepository(deps.DB.Database)
	imageRepo := repositories.NewMongoImageRepository(deps.DB.Database)
	notificationRepo := repositories.NewMongoNotificationRepository(deps.DB.Database)
	txRunner := repositories.NewMongoTransactionRunner(deps.DB.Client, deps.DB.Capabilities.Transactions, deps.Logger)

	// Realtime
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, deps.Logger)

	// Auth. The JWT resolver is always constructed: local signin issues its
	// tokens even when Firebase guards the API surface.
	jwtResolver := auth.NewJWTResolver(
		deps.Config.JWTSecret,
		time.Duration(deps.Config.TokenTTLMinutes)*time.Minute,
		userRepo,
	)
	var resolver auth.TokenResolver = jwtResolver
	if deps.Config.AuthProvider == "firebase" && deps.FirebaseClient != nil {
		resolver = auth.NewFirebaseResolver(deps.FirebaseClient, userRepo)
	}

	// Services
	notificationService := services.NewNotificationService(notificationRepo, broadcaster, deps.Logger)
	friendshipService := services.NewFriendshipService(userRepo, txRunner, notificationService, deps.Logger)

	personal := realtime.NewPersonalChannel(registry, realtime.AuthenticatorFunc(
		func(ctx context.Context, token string) (string, error) {
			currentUser, err := resolver.Resolve(ctx, token)
			if err != nil {
				return "", err
			}
			return currentUser.ID, nil
		}), deps.Logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(deps.DB.Client)
	authHandler := handlers.NewAuthHandler(userRepo, jwtResolver)
	userHandler := handlers.NewUserHandler(userRepo, broadcaster)
	postHandler := handlers.NewPostHandler(postRepo, commentRepo, notificationRepo, notificationService, broadcaster)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, notificationService, broadcaster)
	imageHandler := handlers.NewImageHandler(imageRepo, notificationService, broadcaster, deps.Config.UploadDir)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	wsHandler := handlers.NewWebSocketHandler(registry, personal, deps.Logger)

	authGuard := middleware.BearerAuth(resolver)

	healthHandler.RegisterHealthRoutes(e.Group(""))
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))

	api := e.Group("/api/v1", authGuard)
	userHandler.RegisterUserRoutes(api.Group("/users"))
	postGroup := api.Group("/posts")
	postHandler.RegisterPostRoutes(postGroup)
	commentHandler.RegisterCommentRoutes(postGroup)
	imageHandler.RegisterImageRoutes(api.Group("/images"))
	friendshipHandler.RegisterFriendshipRoutes(api.Group("/friends"))
	notificationHandler.RegisterNotificationRoutes(api.Group("/notifications"))

	wsHandler.RegisterWebSocketRoutes(e.Group("/ws"))

	e.Static("/uploads", deps.Config.UploadDir)

	return e
}
