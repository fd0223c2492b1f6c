package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements repositories.AuditRepository. The audit
// trail is append-only: no update or delete path exists.
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

const auditColumns = "id, table_name, record_id, action, old_values, new_values, changed_by_id, created_at"

// Insert appends an audit entry and fills in its generated id
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)

	query := `INSERT INTO audit_logs (table_name, record_id, action, old_values, new_values, changed_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		entry.TableName,
		entry.RecordID,
		entry.Action,
		entry.OldValues,
		entry.NewValues,
		entry.ChangedByID,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry recorded",
		zap.String("table", entry.TableName),
		zap.Int64("record_id", entry.RecordID),
		zap.String("action", string(entry.Action)),
	)

	return entry, nil
}

// List filters audit entries by any combination of criteria, newest first
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)

	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	next := func() int { return len(args) + 1 }

	if filter.TableName != nil {
		conditions = append(conditions, fmt.Sprintf("table_name = $%d", next()))
		args = append(args, *filter.TableName)
	}
	if filter.RecordID != nil {
		conditions = append(conditions, fmt.Sprintf("record_id = $%d", next()))
		args = append(args, *filter.RecordID)
	}
	if filter.ChangedByID != nil {
		conditions = append(conditions, fmt.Sprintf("changed_by_id = $%d", next()))
		args = append(args, *filter.ChangedByID)
	}
	if filter.Action != nil {
		conditions = append(conditions, fmt.Sprintf("action = $%d", next()))
		args = append(args, *filter.Action)
	}

	query := "SELECT " + auditColumns + " FROM audit_logs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListForRecord returns the full history of one record, newest first
func (r *AuditRepository) ListForRecord(ctx context.Context, tableName string, recordID int64) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)

	query := "SELECT " + auditColumns + ` FROM audit_logs
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at DESC`

	rows, err := executor.QueryContext(ctx, query, tableName, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for record: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *AuditRepository) collect(rows *sql.Rows) ([]*models.AuditLog, error) {
	entries := make([]*models.AuditLog, 0)
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(
			&e.ID, &e.TableName, &e.RecordID, &e.Action,
			&e.OldValues, &e.NewValues, &e.ChangedByID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit rows: %w", err)
	}
	return entries, nil
}
