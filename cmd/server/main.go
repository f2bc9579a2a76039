package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"marketplace/internal/api/router"
	"marketplace/internal/api/util"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/core/repository"
	"marketplace/internal/core/service"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real env vars win
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	mongoConfig := config.NewMongoConfig()

	// Connect to MongoDB; serving without a data store is pointless
	db, err := config.ConnectMongoDB(mongoConfig)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Optional Redis cache for the category aggregation
	cache.Initialize(cfg.RedisURL)
	defer cache.Close()

	// Initialize repositories with MongoDB
	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, userRepo)

	tokens := util.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	// Initialize router; /health pings the store through the live client
	pingStore := func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	}
	r := router.NewRouter(productService, userService, tokens, cfg.CORSOrigins, pingStore)

	// Bind, walking up the port range when the configured port is taken
	listener, port, err := listenWithRetry(cfg.Port, cfg.MaxPortTries)
	if err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Printf("API listening on :%d", port)
	if err := http.Serve(listener, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func listenWithRetry(basePort, maxTries int) (net.Listener, int, error) {
	for attempt := 0; attempt <= maxTries; attempt++ {
		port := basePort + attempt
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			return listener, port, nil
		}
		log.Printf("Port %d in use, trying %d (attempt %d)", port, port+1, attempt+1)
	}
	return nil, 0, fmt.Errorf("all ports %d-%d are in use", basePort, basePort+maxTries)
}
