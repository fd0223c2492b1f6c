package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/utils"
	"go.uber.org/zap"
)

// auditedTables are the table names the audit API accepts
var auditedTables = map[string]bool{
	models.User{}.TableName():   true,
	models.Client{}.TableName(): true,
	models.Lead{}.TableName():   true,
}

// AuditHandler exposes the read-only audit trail
type AuditHandler struct {
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(recorder *audit.Recorder, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// HandleListAuditLogs handles GET /api/v1/audit-logs
func (h *AuditHandler) HandleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	entries, err := h.recorder.List(r.Context(), filter, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, entries)
}

// HandleRecordHistory handles GET /api/v1/audit-logs/{table}/{id}
func (h *AuditHandler) HandleRecordHistory(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !auditedTables[table] {
		_ = utils.WriteBadRequest(w, "Unknown table: "+table, nil)
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	entries, err := h.recorder.ListForRecord(r.Context(), table, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, entries)
}

// auditFilterFromQuery builds an audit listing filter from query parameters
func auditFilterFromQuery(r *http.Request) (models.AuditFilter, error) {
	var filter models.AuditFilter
	q := r.URL.Query()

	if v := q.Get("table_name"); v != "" {
		if !auditedTables[v] {
			return filter, errInvalidQueryParam("table_name", v)
		}
		filter.TableName = &v
	}
	if v := q.Get("record_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidQueryParam("record_id", v)
		}
		filter.RecordID = &id
	}
	if v := q.Get("changed_by_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidQueryParam("changed_by_id", v)
		}
		filter.ChangedByID = &id
	}
	if v := q.Get("action"); v != "" {
		action := models.AuditAction(v)
		switch action {
		case models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete:
			filter.Action = &action
		default:
			return filter, errInvalidQueryParam("action", v)
		}
	}

	return filter, nil
}
