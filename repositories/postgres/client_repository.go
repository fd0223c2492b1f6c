package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// ClientRepository implements repositories.ClientRepository
type ClientRepository struct {
	*entityRepository[models.Client]
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB, logger *zap.Logger) repositories.ClientRepository {
	mapping := entityMapping[models.Client]{
		table: "clients",
		columns: []string{
			"id", "client_type", "contact_name", "company_name", "phone",
			"email", "instagram", "address", "country", "created_at", "updated_at",
		},
		scanRow: func(s rowScanner) (*models.Client, error) {
			var c models.Client
			if err := s.Scan(
				&c.ID, &c.ClientType, &c.ContactName, &c.CompanyName, &c.Phone,
				&c.Email, &c.Instagram, &c.Address, &c.Country, &c.CreatedAt, &c.UpdatedAt,
			); err != nil {
				return nil, err
			}
			return &c, nil
		},
		insertCols: []string{
			"client_type", "contact_name", "company_name", "phone",
			"email", "instagram", "address", "country", "created_at", "updated_at",
		},
		insertArgs: func(c *models.Client) []interface{} {
			return []interface{}{
				c.ClientType, c.ContactName, c.CompanyName, c.Phone,
				c.Email, c.Instagram, c.Address, c.Country, c.CreatedAt, c.UpdatedAt,
			}
		},
		setID: func(c *models.Client, id int64) { c.ID = id },
	}

	return &ClientRepository{
		entityRepository: newEntityRepository(db, logger, mapping),
	}
}

// GetByPhone retrieves a client by phone, returning (nil, nil) when absent
func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	return r.GetByField(ctx, "phone", phone)
}

// SearchByName searches clients by contact or company name, case-insensitive
func (r *ClientRepository) SearchByName(ctx context.Context, name string, limit, offset int) ([]*models.Client, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM clients
		WHERE contact_name ILIKE $1 OR company_name ILIKE $1
		ORDER BY id LIMIT $2 OFFSET $3`, r.columnList())

	pattern := "%" + name + "%"
	rows, err := executor.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients by name: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// AdvancedSearch filters clients by any combination of criteria
func (r *ClientRepository) AdvancedSearch(ctx context.Context, filter models.ClientFilter, limit, offset int) ([]*models.Client, error) {
	executor := GetExecutor(ctx, r.db)

	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	next := func() int { return len(args) + 1 }

	if filter.ClientType != nil {
		conditions = append(conditions, fmt.Sprintf("client_type = $%d", next()))
		args = append(args, *filter.ClientType)
	}
	if filter.ContactName != nil {
		conditions = append(conditions, fmt.Sprintf("contact_name ILIKE $%d", next()))
		args = append(args, "%"+*filter.ContactName+"%")
	}
	if filter.CompanyName != nil {
		conditions = append(conditions, fmt.Sprintf("company_name ILIKE $%d", next()))
		args = append(args, "%"+*filter.CompanyName+"%")
	}
	if filter.Phone != nil {
		conditions = append(conditions, fmt.Sprintf("phone = $%d", next()))
		args = append(args, *filter.Phone)
	}
	if filter.Email != nil {
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", next()))
		args = append(args, "%"+*filter.Email+"%")
	}
	if filter.Instagram != nil {
		conditions = append(conditions, fmt.Sprintf("instagram ILIKE $%d", next()))
		args = append(args, "%"+*filter.Instagram+"%")
	}
	if filter.Country != nil {
		conditions = append(conditions, fmt.Sprintf("country = $%d", next()))
		args = append(args, *filter.Country)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", next()))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", next()))
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf("SELECT %s FROM clients", r.columnList())
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

var _ repositories.ClientRepository = (*ClientRepository)(nil)
