package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mindwellhq/mindwell-backend/internal/handlers"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/token", handlers.Login)
	r.Post("/api/token/refresh", handlers.Refresh)
	r.Post("/api/signup", handlers.Signup)

	// Public content routes
	r.Get("/api/therapists", handlers.ListTherapists)
	r.Get("/api/categories", handlers.ListCategories)
	r.Get("/api/blogs/category/{categoryName}", handlers.BlogsByCategory)
	r.Get("/api/blogs/latest", handlers.LatestBlogs)
	r.Get("/api/blogs/{category}/{blog}", handlers.GetBlog)
	r.Get("/api/news/latest", handlers.LatestNews)
	r.Get("/api/calculators", handlers.ListCalculators)
	r.Get("/api/calculators/{name}", handlers.GetCalculatorDetail)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/api/logout", handlers.Logout)
		r.Get("/api/bookings", handlers.ListMyBookings)
		r.Post("/api/bookings", handlers.CreateBooking)
		r.Get("/api/user/scores", handlers.UserLatestScores)
		r.Post("/api/save-score", handlers.SaveScore)
	})

	// File upload
	r.Post("/api/upload", handlers.UploadFile)

	// Chatbot: HTTP endpoint plus a WebSocket variant for streaming clients
	r.Post("/api/chatbot", handlers.Chatbot)
	r.Get("/ws/chatbot", handlers.ChatbotWebSocket)
}
