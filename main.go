package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"sportspal_server/config"
	"sportspal_server/routes"
	"sportspal_server/services"
	"sportspal_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	ctx := context.Background()

	conf, err := config.ReadConf()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Local activity cache backed by sqlite
	cacheService, err := services.NewCacheService(conf.Conf.CacheDBPath)
	if err != nil {
		log.Fatalf("❌ Failed to open cache database: %v", err)
	}
	defer cacheService.Close()

	// Initialize Services
	notificationService := services.NewNotificationService(ctx, dynamoService, conf.Conf.FirebaseProjectID)
	chatService := services.NewChatService(dynamoService, notificationService)
	activityService := &services.ActivityService{Dynamo: dynamoService, Chat: chatService}
	profileService := &services.ProfileService{Dynamo: dynamoService, Notifier: notificationService}
	accountService := services.NewAccountService(ctx, dynamoService, activityService, chatService, profileService, conf.Conf.FirebaseProjectID)

	syncManager := services.NewSyncManager(activityService, chatService, cacheService, profileService.FetchBlockedIDs)

	log.Printf("Using server port: %d\n", conf.Conf.Port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to SportsPal")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	r.HandleFunc("/privacy-policy", routes.PrivacyPolicyHandler).Methods("GET")

	// Register routes
	routes.RegisterActivityRoutes(r, activityService, syncManager)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterProfileRoutes(r, profileService)
	routes.RegisterAccountRoutes(r, accountService)
	routes.RegisterS3Routes(r)

	// Realtime chat transport
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("❌ Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	addr := fmt.Sprintf(":%d", conf.Conf.Port)
	log.Printf("Starting server on %s...\n", addr)
	log.Fatal(http.ListenAndServe(addr, corsHandler))
}
