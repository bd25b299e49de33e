package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	personaHandler "github.com/voxline/voxline/internal/handler/persona"
	turnHandler "github.com/voxline/voxline/internal/handler/turn"
	"github.com/voxline/voxline/internal/handler/voicews"
	middlewarePkg "github.com/voxline/voxline/internal/middleware"
	personaModel "github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/internal/service/orchestrator"
	"github.com/voxline/voxline/pkg/utils"
)

// Options carries the router's tunables.
type Options struct {
	MaxAudioBytes int64
	OutputDir     string
	Logger        zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, orch *orchestrator.Service, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Synthesized replies are served as static MP3 files.
	r.Handle("/uploads/responses/*", http.StripPrefix("/uploads/responses/",
		http.FileServer(http.Dir(opts.OutputDir))))

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		turnHandler.New(orch, personas, opts.MaxAudioBytes).RegisterRoutes(api)
		voicews.New(orch, personas, opts.Logger).RegisterRoutes(api)
	})

	return r
}
