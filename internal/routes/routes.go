package routes

import (
	"net/http"
	"time"

	"github.com/Bajtii/Object-detection/internal/handler"
	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/middleware"
	"github.com/Bajtii/Object-detection/internal/service/websocket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the monitor endpoints read from.
type Deps struct {
	InstanceID string
	Started    time.Time
	Token      string
	State      handler.StateSource
	Stats      handler.StatsSource
	Hub        *websocket.HubService
	Logger     *logger.Logger
}

// SetupRoutes registers the monitor endpoints. Everything except /healthz
// sits behind the token middleware.
func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", handler.HealthHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(d.Token))

		// API endpoints
		var viewers handler.ViewerCounter
		if d.Hub != nil {
			viewers = d.Hub
			r.Get("/api/view", handler.ViewWebsocketHandler(d.Hub, d.Logger))
		}
		r.Get("/api/status", handler.StatusHandler(d.InstanceID, d.Started, d.State, d.Stats, viewers, d.Logger))

		// Log endpoints
		r.Get("/logs/{level}", handler.ShowLogsHandler(d.Logger))
		r.Post("/logs/{level}/clear", handler.ClearLogsHandler(d.Logger))
	})

	return r
}
