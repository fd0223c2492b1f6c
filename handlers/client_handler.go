package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services"
	"github.com/salesdesk/crm-backend/utils"
	"go.uber.org/zap"
)

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	ClientType  models.ClientType `json:"client_type" validate:"required,oneof=natural juridical"`
	ContactName string            `json:"contact_name" validate:"required,max=255"`
	CompanyName *string           `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Phone       *string           `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email       *string           `json:"email,omitempty" validate:"omitempty,email"`
	Instagram   *string           `json:"instagram,omitempty" validate:"omitempty,max=255"`
	Address     *string           `json:"address,omitempty"`
	Country     *string           `json:"country,omitempty" validate:"omitempty,max=100"`
}

// UpdateClientRequest represents a partial client update. Absent fields
// are left untouched.
type UpdateClientRequest struct {
	ClientType  *models.ClientType `json:"client_type,omitempty" validate:"omitempty,oneof=natural juridical"`
	ContactName *string            `json:"contact_name,omitempty" validate:"omitempty,max=255"`
	CompanyName *string            `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Phone       *string            `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email       *string            `json:"email,omitempty" validate:"omitempty,email"`
	Instagram   *string            `json:"instagram,omitempty" validate:"omitempty,max=255"`
	Address     *string            `json:"address,omitempty"`
	Country     *string            `json:"country,omitempty" validate:"omitempty,max=100"`
}

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clients *services.ClientService
	logger  *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients *services.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clients: clients,
		logger:  logger,
	}
}

// HandleCreateClient handles POST /api/v1/clients
func (h *ClientHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	client, err := h.clients.Create(ctx, services.CreateClientInput{
		ClientType:  req.ClientType,
		ContactName: req.ContactName,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Email:       req.Email,
		Instagram:   req.Instagram,
		Address:     req.Address,
		Country:     req.Country,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("client created",
		zap.String("request_id", requestID),
		zap.Int64("client_id", client.ID))

	_ = utils.WriteCreated(w, client)
}

// HandleGetClient handles GET /api/v1/clients/{id}
func (h *ClientHandler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, client)
}

// HandleListClients handles GET /api/v1/clients
func (h *ClientHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	clients, err := h.clients.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, clients)
}

// HandleSearchClients handles GET /api/v1/clients/search?q=
func (h *ClientHandler) HandleSearchClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	term := r.URL.Query().Get("q")

	clients, err := h.clients.Search(r.Context(), term, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, clients)
}

// HandleAdvancedSearchClients handles GET /api/v1/clients/advanced-search
func (h *ClientHandler) HandleAdvancedSearchClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter, err := clientFilterFromQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	clients, err := h.clients.AdvancedSearch(r.Context(), filter, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, clients)
}

// HandleCheckClientExists handles GET /api/v1/clients/check-exists?phone=
func (h *ClientHandler) HandleCheckClientExists(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		_ = utils.WriteBadRequest(w, "Phone number is required", nil)
		return
	}

	exists, err := h.clients.CheckExists(r.Context(), phone)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]bool{"exists": exists})
}

// HandleGetClientByPhone handles GET /api/v1/clients/by-phone/{phone}
func (h *ClientHandler) HandleGetClientByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	client, err := h.clients.GetByPhone(r.Context(), phone)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, client)
}

// HandleUpdateClient handles PATCH /api/v1/clients/{id}
func (h *ClientHandler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	client, err := h.clients.Update(r.Context(), id, models.ClientPatch{
		ClientType:  req.ClientType,
		ContactName: req.ContactName,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Email:       req.Email,
		Instagram:   req.Instagram,
		Address:     req.Address,
		Country:     req.Country,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, client)
}

// HandleDeleteClient handles DELETE /api/v1/clients/{id}
func (h *ClientHandler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.clients.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// clientFilterFromQuery builds a search filter from query parameters
func clientFilterFromQuery(r *http.Request) (models.ClientFilter, error) {
	var filter models.ClientFilter
	q := r.URL.Query()

	if v := q.Get("contact_name"); v != "" {
		filter.ContactName = &v
	}
	if v := q.Get("company_name"); v != "" {
		filter.CompanyName = &v
	}
	if v := q.Get("phone"); v != "" {
		filter.Phone = &v
	}
	if v := q.Get("email"); v != "" {
		filter.Email = &v
	}
	if v := q.Get("instagram"); v != "" {
		filter.Instagram = &v
	}
	if v := q.Get("client_type"); v != "" {
		ct := models.ClientType(v)
		if !ct.Valid() {
			return filter, errInvalidQueryParam("client_type", v)
		}
		filter.ClientType = &ct
	}
	if v := q.Get("country"); v != "" {
		filter.Country = &v
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
