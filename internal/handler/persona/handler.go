package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	personas persona.Store
}

func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes registers the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

// handleListPersonas lists the available conversation modes. Prompts and
// fallback texts stay server-side.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
