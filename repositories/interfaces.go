package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/salesdesk/crm-backend/models"
)

// ErrNotFound is returned by Get*OrFail methods when no row matches.
var ErrNotFound = errors.New("record not found")

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TransactionManager manages database transactions
type TransactionManager interface {
	// InTransaction executes fn inside a transaction. The transaction is
	// stored in the returned context so repositories called within fn
	// participate in it automatically.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// EntityRepository is the generic persistence gateway shared by every
// entity type. Update takes a whitelisted column->value map and returns
// the refetched row.
type EntityRepository[T any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	GetByIDOrFail(ctx context.Context, id int64) (*T, error)
	GetByField(ctx context.Context, field string, value interface{}) (*T, error)
	ListByField(ctx context.Context, field string, value interface{}, limit, offset int) ([]*T, error)
	ListAll(ctx context.Context, limit, offset int) ([]*T, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id int64, changes map[string]interface{}) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository handles user persistence
type UserRepository interface {
	EntityRepository[models.User]
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// ClientRepository handles client persistence
type ClientRepository interface {
	EntityRepository[models.Client]
	GetByPhone(ctx context.Context, phone string) (*models.Client, error)
	SearchByName(ctx context.Context, name string, limit, offset int) ([]*models.Client, error)
	AdvancedSearch(ctx context.Context, filter models.ClientFilter, limit, offset int) ([]*models.Client, error)
}

// LeadRepository handles sales lead persistence
type LeadRepository interface {
	EntityRepository[models.Lead]
	List(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.Lead, error)
	CountByStatus(ctx context.Context) (map[models.LeadStatus]int64, error)
	CountByChannel(ctx context.Context) (map[models.LeadChannel]int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Lead, error)
}

// AuditRepository handles the immutable audit trail. Rows are only ever
// inserted and read, never updated or deleted.
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error)
	ListForRecord(ctx context.Context, tableName string, recordID int64) ([]*models.AuditLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users   UserRepository
	Clients ClientRepository
	Leads   LeadRepository
	Audit   AuditRepository
	TxMgr   TransactionManager
}
