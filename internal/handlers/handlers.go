package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"Elegora/internal/config"
	"Elegora/internal/middleware"
	"Elegora/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	ledgerService *service.LedgerService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	origins := config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding", middleware.RequestIDHeader},
		AllowCredentials: true,
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:           300,
	}))
	r.Use(middleware.WithRequestID)
	r.Use(middleware.WithRecovery)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	userHandler := NewUserHandler(userService, ledgerService, logger, config)
	ledgerHandler := NewLedgerHandler(ledgerService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/api/user/me", userHandler.Me)

	// Ledger routes
	r.Route("/api/ledger", func(r chi.Router) {
		r.Get("/items/count", ledgerHandler.ItemCount)
		r.Get("/items/{id}", ledgerHandler.Item)
		r.Post("/items", ledgerHandler.ListItem)
		r.Get("/tx/{hash}", ledgerHandler.Tx)
	})

	return &Handler{Router: r}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
