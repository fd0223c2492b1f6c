package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services"
	"github.com/salesdesk/crm-backend/utils"
	"go.uber.org/zap"
)

// CreateLeadRequest represents a request to open a sales lead
type CreateLeadRequest struct {
	ClientID     int64              `json:"client_id" validate:"required,gt=0"`
	Channel      models.LeadChannel `json:"channel" validate:"required,oneof=web whatsapp instagram manual"`
	AdminNotes   *string            `json:"admin_notes,omitempty"`
	SalesNotes   *string            `json:"sales_notes,omitempty"`
	AssignedToID *int64             `json:"assigned_to_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateLeadRequest represents a partial lead update. Absent fields are
// left untouched.
type UpdateLeadRequest struct {
	ClientID     *int64              `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Channel      *models.LeadChannel `json:"channel,omitempty" validate:"omitempty,oneof=web whatsapp instagram manual"`
	Status       *models.LeadStatus  `json:"status,omitempty" validate:"omitempty,oneof=new contacted quoted closed discarded"`
	AdminNotes   *string             `json:"admin_notes,omitempty"`
	SalesNotes   *string             `json:"sales_notes,omitempty"`
	AssignedToID *int64              `json:"assigned_to_id,omitempty" validate:"omitempty,gt=0"`
}

// ChangeLeadStatusRequest represents a status transition
type ChangeLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" validate:"required,oneof=new contacted quoted closed discarded"`
}

// AssignLeadRequest represents handing a lead to a user
type AssignLeadRequest struct {
	AssignedToID int64 `json:"assigned_to_id" validate:"required,gt=0"`
}

// LeadHandler handles sales lead HTTP requests
type LeadHandler struct {
	leads  *services.LeadService
	logger *zap.Logger
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leads *services.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leads:  leads,
		logger: logger,
	}
}

// HandleCreateLead handles POST /api/v1/leads
func (h *LeadHandler) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := middleware.GetClaimsFromContext(ctx)
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lead, err := h.leads.Create(ctx, services.CreateLeadInput{
		ClientID:     req.ClientID,
		Channel:      req.Channel,
		AdminNotes:   req.AdminNotes,
		SalesNotes:   req.SalesNotes,
		AssignedToID: req.AssignedToID,
		CreatedByID:  claims.UserID,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("lead created",
		zap.Int64("lead_id", lead.ID),
		zap.Int64("client_id", lead.ClientID))

	_ = utils.WriteCreated(w, lead)
}

// HandleGetLead handles GET /api/v1/leads/{id}
func (h *LeadHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	lead, err := h.leads.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lead)
}

// HandleListLeads handles GET /api/v1/leads
func (h *LeadHandler) HandleListLeads(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter, err := leadFilterFromQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	leads, err := h.leads.List(r.Context(), filter, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, leads)
}

// HandleLeadStats handles GET /api/v1/leads/stats
func (h *LeadHandler) HandleLeadStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leads.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, stats)
}

// HandleLeadStatusStats handles GET /api/v1/leads/stats/status
func (h *LeadHandler) HandleLeadStatusStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.leads.StatusCounts(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, counts)
}

// HandleLeadChannelStats handles GET /api/v1/leads/stats/channel
func (h *LeadHandler) HandleLeadChannelStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.leads.ChannelCounts(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, counts)
}

// HandleRecentLeads handles GET /api/v1/leads/recent
func (h *LeadHandler) HandleRecentLeads(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxPageLimit {
			limit = v
		}
	}

	leads, err := h.leads.Recent(r.Context(), limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, leads)
}

// HandleUpdateLead handles PATCH /api/v1/leads/{id}
func (h *LeadHandler) HandleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lead, err := h.leads.Update(r.Context(), id, models.LeadPatch{
		ClientID:     req.ClientID,
		Channel:      req.Channel,
		Status:       req.Status,
		AdminNotes:   req.AdminNotes,
		SalesNotes:   req.SalesNotes,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lead)
}

// HandleChangeLeadStatus handles PUT /api/v1/leads/{id}/status
func (h *LeadHandler) HandleChangeLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req ChangeLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lead, err := h.leads.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lead)
}

// HandleAssignLead handles PUT /api/v1/leads/{id}/assign
func (h *LeadHandler) HandleAssignLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req AssignLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lead, err := h.leads.Assign(r.Context(), id, req.AssignedToID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lead)
}

// HandleDeleteLead handles DELETE /api/v1/leads/{id}
func (h *LeadHandler) HandleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.leads.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// leadFilterFromQuery builds a listing filter from query parameters
func leadFilterFromQuery(r *http.Request) (models.LeadFilter, error) {
	var filter models.LeadFilter
	q := r.URL.Query()

	if v := q.Get("client_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidQueryParam("client_id", v)
		}
		filter.ClientID = &id
	}
	if v := q.Get("status"); v != "" {
		st := models.LeadStatus(v)
		if !st.Valid() {
			return filter, errInvalidQueryParam("status", v)
		}
		filter.Status = &st
	}
	if v := q.Get("channel"); v != "" {
		ch := models.LeadChannel(v)
		if !ch.Valid() {
			return filter, errInvalidQueryParam("channel", v)
		}
		filter.Channel = &ch
	}
	if v := q.Get("assigned_to_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidQueryParam("assigned_to_id", v)
		}
		filter.AssignedToID = &id
	}
	if v := q.Get("created_by_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidQueryParam("created_by_id", v)
		}
		filter.CreatedByID = &id
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("date_from", v)
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("date_to", v)
		}
		filter.DateTo = &t
	}

	return filter, nil
}
