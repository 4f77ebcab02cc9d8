package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"trivia-quiz-service/internal/app"
)

// NewRouter exposes the quiz service over HTTP: health, categories, the live
// attempt count and the websocket UI channel.
func NewRouter(service *app.QuizService, ws *WSHandler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		categories, err := service.Categories(r.Context())
		if err != nil {
			log.Printf("list categories: %v", err)
			writeJSON(w, http.StatusBadGateway, errorPayload{Message: "failed to load categories"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	})
	r.Get("/attempts", func(w http.ResponseWriter, r *http.Request) {
		n, err := service.ActiveAttempts(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"active": n})
	})
	r.Get("/ws", ws.ServeWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
