package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/cache"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/handlers"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/handlers/ws"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/httpx"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/ingress"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/validation"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Chatkit Room-State Gateway",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, DELETE, OPTIONS",
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// Initialize Redis cache (best-effort; the gateway runs without it)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without snapshot cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	snapTTL := time.Duration(validation.SnapshotCacheTTLSeconds()) * time.Second
	snapCache := cache.NewSnapshotCache(redisCache, snapTTL)

	// Initialize hub, registry and handlers
	hub := ws.NewHub()
	registry := handlers.NewRoomRegistry(hub, snapCache)
	roomHandler := handlers.NewRoomHandler(registry, snapCache)
	wsHandler := handlers.NewWebSocketHandler(registry, hub)

	// Optional NATS ingress
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		consumer, err := ingress.NewConsumer(natsURL, registry)
		if err != nil {
			log.Fatal("Failed to connect NATS ingress:", err)
		}
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start NATS ingress:", err)
		}
		defer consumer.Close()
	}

	// Routes
	app.Get("/api/rooms", roomHandler.ListRooms)
	app.Get("/api/rooms/:roomID/snapshot", roomHandler.GetSnapshot)
	app.Delete("/api/rooms/:roomID", roomHandler.RemoveRoom)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return httpx.BadRequest(c, "upgrade_required", "WebSocket upgrade required")
	})
	app.Get("/ws/ingest", websocket.New(wsHandler.HandleIngest))
	app.Get("/ws/rooms/:roomID", websocket.New(wsHandler.HandleSubscribe))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Gateway listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
