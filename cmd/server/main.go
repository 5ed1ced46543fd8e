package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mindwellhq/mindwell-backend/internal/config"
	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/handlers"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
	"github.com/mindwellhq/mindwell-backend/internal/routes"
	"github.com/mindwellhq/mindwell-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	handlers.Init(cfg)
	middleware.JWTSecret = cfg.JWTSecret
	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (optional: only backs the chatbot transcript archive)
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		if err := database.ConnectMongo(cfg.MongoURI); err != nil {
			log.Printf("Warning: failed to connect to MongoDB: %v", err)
			log.Println("Chatbot transcript archiving will not be available")
		} else {
			defer database.DisconnectMongo()
			if err := services.EnsureTranscriptIndexes(context.Background()); err != nil {
				log.Printf("⚠️  WARNING: failed to ensure transcript indexes: %v", err)
			} else {
				log.Println("✅ MongoDB transcript indexes ensured")
			}
		}
	} else {
		log.Println("MONGODB_URI not set; chatbot transcript archiving disabled")
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	// Initialize text-generation client for the chatbot
	if cfg.GeminiAPIKey != "" {
		if err := handlers.InitChatbot(cfg); err != nil {
			log.Printf("Warning: Failed to initialize text generation: %v", err)
			log.Println("Chatbot will not be available")
		} else {
			log.Println("✅ Text-generation service initialized")
		}
	} else {
		log.Println("Warning: GEMINI_API_KEY not set. Chatbot will not be available")
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimitMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/token")
	log.Println("  POST /api/token/refresh")
	log.Println("  POST /api/signup")
	log.Println("  POST /api/logout")
	log.Println("  GET  /api/therapists")
	log.Println("  GET  /api/categories")
	log.Println("  GET  /api/blogs/category/{categoryName}")
	log.Println("  GET  /api/blogs/latest")
	log.Println("  GET  /api/blogs/{category}/{blog}")
	log.Println("  GET  /api/news/latest")
	log.Println("  GET  /api/bookings")
	log.Println("  POST /api/bookings")
	log.Println("  GET  /api/calculators")
	log.Println("  GET  /api/calculators/{name}")
	log.Println("  GET  /api/user/scores")
	log.Println("  POST /api/save-score")
	log.Println("  POST /api/upload")
	log.Println("  POST /api/chatbot")
	log.Println("  GET  /ws/chatbot")

	log.Printf("🚀 Mindwell backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
