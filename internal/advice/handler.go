package advice

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medical-assistant/internal/platform/respond"
)

type Handler struct {
	catalog *Catalog
	now     func() time.Time
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c, now: time.Now}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	rec, err := h.catalog.Generate(req, h.now())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

func (h *Handler) Conditions(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string][]string{"conditions": h.catalog.ConditionNames()})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/advice", h.Generate)
	r.Get("/advice/conditions", h.Conditions)
}
