package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// Recorder writes immutable audit entries for entity mutations. It must
// be called inside the same transaction as the mutation it describes so
// the record and its audit entry commit or roll back together.
type Recorder struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo repositories.AuditRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an audit entry for a mutation. The acting user is
// taken from the request context; when no user is present (system or
// bootstrap work) the entry is silently skipped and the mutation
// proceeds unaudited.
func (r *Recorder) Record(ctx context.Context, tableName string, recordID int64, action models.AuditAction, oldValues, newValues map[string]interface{}) error {
	actorID := middleware.GetUserIDFromContext(ctx)
	if actorID == nil {
		r.logger.Debug("no acting user in context, skipping audit entry",
			zap.String("table", tableName),
			zap.Int64("record_id", recordID),
			zap.String("action", string(action)),
		)
		return nil
	}

	oldJSON, err := marshalValues(oldValues)
	if err != nil {
		return fmt.Errorf("failed to encode old values: %w", err)
	}
	newJSON, err := marshalValues(newValues)
	if err != nil {
		return fmt.Errorf("failed to encode new values: %w", err)
	}

	entry := &models.AuditLog{
		TableName:   tableName,
		RecordID:    recordID,
		Action:      action,
		OldValues:   oldJSON,
		NewValues:   newJSON,
		ChangedByID: *actorID,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := r.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, newest first
func (r *Recorder) List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	return r.repo.List(ctx, filter, limit, offset)
}

// ListForRecord returns the full audit history of one record, newest first
func (r *Recorder) ListForRecord(ctx context.Context, tableName string, recordID int64) ([]*models.AuditLog, error) {
	return r.repo.ListForRecord(ctx, tableName, recordID)
}

func marshalValues(values map[string]interface{}) (json.RawMessage, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return data, nil
}
