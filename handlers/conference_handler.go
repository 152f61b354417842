package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services/conference"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// ConferenceService is the conference service as seen by the HTTP layer
type ConferenceService interface {
	Create(ctx context.Context, createdBy uuid.UUID, in conference.Input) (*models.Conference, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Conference, error)
	List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error)
	Update(ctx context.Context, id uuid.UUID, in conference.Input) (*models.Conference, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	Register(ctx context.Context, conferenceID, userID uuid.UUID) (*models.Registration, error)
	Registrations(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error)
	MyRegistrations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error)
}

type conferenceRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"max=300"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	Status      string    `json:"status" validate:"omitempty,oneof=DRAFT OPEN CLOSED"`
}

func (req conferenceRequest) input() conference.Input {
	return conference.Input{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.ConferenceStatus(req.Status),
	}
}

// ConferenceHandler handles conference and registration requests
type ConferenceHandler struct {
	conferences ConferenceService
	logger      *zap.Logger
}

// NewConferenceHandler creates a new ConferenceHandler
func NewConferenceHandler(conferences ConferenceService, logger *zap.Logger) *ConferenceHandler {
	return &ConferenceHandler{
		conferences: conferences,
		logger:      logger,
	}
}

// HandleList handles GET /conferences
func (h *ConferenceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	filter := models.ConferenceFilter{Limit: page.Limit, Offset: page.Offset}
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		status := models.ConferenceStatus(strings.ToUpper(s))
		filter.Status = &status
	}

	confs, err := h.conferences.List(r.Context(), filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, confs)
}

// HandleGet handles GET /conferences/{id}
func (h *ConferenceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	conf, err := h.conferences.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, conf)
}

// HandleCreate handles POST /conferences
func (h *ConferenceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req conferenceRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	conf, err := h.conferences.Create(r.Context(), userID, req.input())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, conf)
}

// HandleUpdate handles PUT /conferences/{id}
func (h *ConferenceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req conferenceRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	conf, err := h.conferences.Update(r.Context(), id, req.input())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, conf)
}

// HandleDelete handles DELETE /conferences/{id}
func (h *ConferenceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.conferences.Delete(r.Context(), userID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}

// HandleRegister handles POST /conferences/{id}/registrations
func (h *ConferenceHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	reg, err := h.conferences.Register(r.Context(), id, userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, reg)
}

// HandleListRegistrations handles GET /conferences/{id}/registrations
func (h *ConferenceHandler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	page := utils.ParsePage(r)

	regs, err := h.conferences.Registrations(r.Context(), id, page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, regs)
}

// HandleMyRegistrations handles GET /registrations/mine
func (h *ConferenceHandler) HandleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page := utils.ParsePage(r)

	regs, err := h.conferences.MyRegistrations(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, regs)
}
