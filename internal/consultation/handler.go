package consultation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medical-assistant/internal/platform/apperr"
	"medical-assistant/internal/platform/respond"
	"medical-assistant/internal/report"
)

const maxAudioSize = 10 << 20

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type createResponse struct {
	ConsultationID uuid.UUID `json:"consultation_id"`
	Welcome        string    `json:"welcome"`
	Disclaimer     string    `json:"disclaimer"`
}

type chatRequest struct {
	ConsultationID string `json:"consultation_id"`
	Text           string `json:"text"`
}

type diagnoseRequest struct {
	ConsultationID string `json:"consultation_id"`
	Form
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid consultation ID")
	}
	return id, nil
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.CreateConsultation(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, createResponse{
		ConsultationID: sess.ID,
		Welcome:        WelcomeMessage,
		Disclaimer:     Disclaimer,
	})
}

func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	sess, err := h.svc.GetConsultation(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sess.View())
}

func (h *Handler) EndConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.svc.EndConsultation(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := parseID(req.ConsultationID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp, err := h.svc.SendMessage(r.Context(), id, req.Text)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize)
	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		respond.Error(w, apperr.Validation("invalid multipart form"))
		return
	}

	id, err := parseID(r.FormValue("consultation_id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respond.Error(w, apperr.Validation("missing audio file"))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		respond.Error(w, apperr.Validation("failed to read audio file"))
		return
	}

	resp, err := h.svc.SendAudio(r.Context(), id, buf.Bytes(), header.Filename)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := parseID(req.ConsultationID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	out, err := h.svc.SubmitDiagnosis(r.Context(), id, req.Form)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.svc.Reset(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	file, err := h.svc.Export(r.Context(), id, format)
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.svc.SendReport(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Route("/consultation", func(r chi.Router) {
		r.Post("/", h.CreateConsultation)
		r.Post("/chat", h.Chat)
		r.Post("/audio", h.Audio)
		r.Post("/diagnose", h.Diagnose)
		r.Get("/{id}", h.GetConsultation)
		r.Delete("/{id}", h.EndConsultation)
		r.Post("/{id}/reset", h.Reset)
		r.Get("/{id}/export", h.Export)
		r.Post("/{id}/report", h.SendReport)
	})
}
