package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services"
	"github.com/salesdesk/crm-backend/utils"
	"go.uber.org/zap"
)

// CreateUserRequest represents a request to register a user account
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=100"`
	Password string          `json:"password" validate:"required,min=8"`
	Email    *string         `json:"email,omitempty" validate:"omitempty,email"`
	Role     models.UserRole `json:"role" validate:"required,oneof=admin sales management"`
}

// UpdateUserRequest represents a partial account update. Absent fields
// are left untouched.
type UpdateUserRequest struct {
	Username *string          `json:"username,omitempty" validate:"omitempty,min=3,max=100"`
	Email    *string          `json:"email,omitempty" validate:"omitempty,email"`
	Password *string          `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin sales management"`
	IsActive *bool            `json:"is_active,omitempty"`
}

// UserHandler handles user account HTTP requests
type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleCreateUser handles POST /api/v1/users
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.Create(r.Context(), services.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	_ = utils.WriteCreated(w, user)
}

// HandleGetUser handles GET /api/v1/users/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleGetCurrentUser handles GET /api/v1/users/me
func (h *UserHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleListUsers handles GET /api/v1/users. With active=true only
// users that can sign in are returned.
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var users []*models.User
	var err error
	if r.URL.Query().Get("active") == "true" {
		users, err = h.users.ListActive(r.Context(), limit, offset)
	} else {
		users, err = h.users.List(r.Context(), limit, offset)
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, users)
}

// HandleUpdateUser handles PATCH /api/v1/users/{id}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.Update(r.Context(), id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleDeactivateUser handles POST /api/v1/users/{id}/deactivate
func (h *UserHandler) HandleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	user, err := h.users.Deactivate(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleDeleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
