// server/cmd/api/main.go
package main

import (
	"log"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/api/routes"
	"bill-delivery-api-server/internal/auth"
	"bill-delivery-api-server/internal/cache"
	"bill-delivery-api-server/internal/database"
	"bill-delivery-api-server/internal/s3"
	"bill-delivery-api-server/internal/socket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// 2. Connect to MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 3. Make sure an admin account exists
	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. Auth service
	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		log.Fatalf("Failed to initialize JWT manager: %v", err)
	}
	authService := &auth.Service{Users: database.NewUserStore(db), JWT: jwtManager}

	// 5. S3 uploader for delivery photos and upload archives.
	// Optional: without a bucket the photo endpoints return 503.
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured, photo upload disabled")
	}

	// 6. Redis cache for the analytics summary. Optional as well.
	var statsCache *cache.Client
	if cfg.Redis.URL != "" {
		statsCache, err = cache.Initialize(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
	} else {
		log.Println("Redis not configured, analytics cache disabled")
	}

	// 7. WebSocket hub for live dashboard events
	wsHub := socket.NewHub()

	// 8. Wire everything into the router
	router := routes.SetupRouter(cfg, db, authService, jwtManager, s3Uploader, statsCache, wsHub)

	// 9. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
