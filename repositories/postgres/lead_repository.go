package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// LeadRepository implements repositories.LeadRepository
type LeadRepository struct {
	*entityRepository[models.Lead]
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *DB, logger *zap.Logger) repositories.LeadRepository {
	mapping := entityMapping[models.Lead]{
		table: "leads",
		columns: []string{
			"id", "client_id", "channel", "status", "admin_notes",
			"sales_notes", "created_by_id", "assigned_to_id", "created_at", "updated_at",
		},
		scanRow: func(s rowScanner) (*models.Lead, error) {
			var l models.Lead
			if err := s.Scan(
				&l.ID, &l.ClientID, &l.Channel, &l.Status, &l.AdminNotes,
				&l.SalesNotes, &l.CreatedByID, &l.AssignedToID, &l.CreatedAt, &l.UpdatedAt,
			); err != nil {
				return nil, err
			}
			return &l, nil
		},
		insertCols: []string{
			"client_id", "channel", "status", "admin_notes",
			"sales_notes", "created_by_id", "assigned_to_id", "created_at", "updated_at",
		},
		insertArgs: func(l *models.Lead) []interface{} {
			return []interface{}{
				l.ClientID, l.Channel, l.Status, l.AdminNotes,
				l.SalesNotes, l.CreatedByID, l.AssignedToID, l.CreatedAt, l.UpdatedAt,
			}
		},
		setID: func(l *models.Lead, id int64) { l.ID = id },
	}

	return &LeadRepository{
		entityRepository: newEntityRepository(db, logger, mapping),
	}
}

// List filters leads by any combination of criteria, newest first
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.Lead, error) {
	executor := GetExecutor(ctx, r.db)

	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	next := func() int { return len(args) + 1 }

	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", next()))
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", next()))
		args = append(args, *filter.Status)
	}
	if filter.Channel != nil {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", next()))
		args = append(args, *filter.Channel)
	}
	if filter.AssignedToID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", next()))
		args = append(args, *filter.AssignedToID)
	}
	if filter.CreatedByID != nil {
		conditions = append(conditions, fmt.Sprintf("created_by_id = $%d", next()))
		args = append(args, *filter.CreatedByID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", next()))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", next()))
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf("SELECT %s FROM leads", r.columnList())
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// CountByStatus returns lead counts grouped by status
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int64, error) {
	executor := GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, "SELECT status, COUNT(*) FROM leads GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadStatus]int64)
	for rows.Next() {
		var status models.LeadStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, nil
}

// CountByChannel returns lead counts grouped by channel
func (r *LeadRepository) CountByChannel(ctx context.Context) (map[models.LeadChannel]int64, error) {
	executor := GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, "SELECT channel, COUNT(*) FROM leads GROUP BY channel")
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by channel: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadChannel]int64)
	for rows.Next() {
		var channel models.LeadChannel
		var count int64
		if err := rows.Scan(&channel, &count); err != nil {
			return nil, fmt.Errorf("failed to scan channel count: %w", err)
		}
		counts[channel] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channel counts: %w", err)
	}
	return counts, nil
}

// Recent returns the most recently created leads
func (r *LeadRepository) Recent(ctx context.Context, limit int) ([]*models.Lead, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM leads ORDER BY created_at DESC LIMIT $1", r.columnList())

	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent leads: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

var _ repositories.LeadRepository = (*LeadRepository)(nil)
