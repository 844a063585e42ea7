package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"chitchat/internal/adapter/api"
	"chitchat/internal/adapter/api/handler"
	apimiddleware "chitchat/internal/adapter/api/middleware"
	"chitchat/internal/adapter/api/router"
	"chitchat/internal/adapter/repository"
	"chitchat/internal/infrastructure/firebase"
	"chitchat/internal/infrastructure/presence"
	"chitchat/internal/infrastructure/storage"
	"chitchat/internal/infrastructure/websocket"
	"chitchat/internal/usecase"
	"chitchat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	credentialsPath := ""

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		credentialsPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if credentialsPath == "" {
			credentialsPath = "./service-account.json"
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		opt = option.WithCredentialsFile(credentialsPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseProject, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	storyRepo := repository.NewFirestoreStoryRepository(firestoreClient)

	firebaseAuthClient := firebase.NewAuthClient(authClient)

	registry := presence.NewRegistry()
	wsManager := websocket.NewManager(registry)

	authUseCase := usecase.NewAuthUseCase(firebaseAuthClient, userRepo)
	userUseCase := usecase.NewUserUseCase(userRepo, storageClient)
	contactUseCase := usecase.NewContactUseCase(userRepo, conversationRepo, messageRepo)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, conversationRepo, userRepo, registry, wsManager, storageClient, cfg.MessagePageSize)
	reactionUseCase := usecase.NewReactionUseCase(messageRepo, wsManager)
	storyUseCase := usecase.NewStoryUseCase(storyRepo, userRepo, storageClient, wsManager)

	// The manager dispatches seen/online signals to the message usecase.
	wsManager.SetSignalHandler(messageUseCase)
	wsManager.Start(ctx)

	handler.Setup(authUseCase, userUseCase, contactUseCase, messageUseCase, reactionUseCase, storyUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
	}))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, authMiddleware)

	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, cfg.ClientOrigin)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
