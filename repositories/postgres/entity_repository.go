package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan closures
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// entityMapping describes how an entity maps onto its table: the column
// list (id first), a scan closure matching that column order, and the
// insert argument extractor for the non-id columns.
type entityMapping[T any] struct {
	table      string
	columns    []string
	scanRow    func(s rowScanner) (*T, error)
	insertCols []string
	insertArgs func(entity *T) []interface{}
	setID      func(entity *T, id int64)
}

// entityRepository is the generic persistence gateway backing every
// entity repository. All queries go through GetExecutor so they
// participate in an in-context transaction when one is present.
type entityRepository[T any] struct {
	db      *DB
	logger  *zap.Logger
	mapping entityMapping[T]
}

func newEntityRepository[T any](db *DB, logger *zap.Logger, mapping entityMapping[T]) *entityRepository[T] {
	return &entityRepository[T]{
		db:      db,
		logger:  logger,
		mapping: mapping,
	}
}

func (r *entityRepository[T]) columnList() string {
	return strings.Join(r.mapping.columns, ", ")
}

// GetByID retrieves an entity by id, returning (nil, nil) when absent
func (r *entityRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.columnList(), r.mapping.table)

	entity, err := r.mapping.scanRow(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s by id: %w", r.mapping.table, err)
	}

	return entity, nil
}

// GetByIDOrFail retrieves an entity by id, returning ErrNotFound when absent
func (r *entityRepository[T]) GetByIDOrFail(ctx context.Context, id int64) (*T, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%s id %d: %w", r.mapping.table, id, repositories.ErrNotFound)
	}
	return entity, nil
}

// GetByField retrieves the first entity matching field = value,
// returning (nil, nil) when absent. The field name must come from the
// repository's own column set, never from user input.
func (r *entityRepository[T]) GetByField(ctx context.Context, field string, value interface{}) (*T, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1", r.columnList(), r.mapping.table, field)

	entity, err := r.mapping.scanRow(executor.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s by %s: %w", r.mapping.table, field, err)
	}

	return entity, nil
}

// ListByField lists entities matching field = value ordered by id
func (r *entityRepository[T]) ListByField(ctx context.Context, field string, value interface{}, limit, offset int) ([]*T, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY id LIMIT $2 OFFSET $3",
		r.columnList(), r.mapping.table, field)

	rows, err := executor.QueryContext(ctx, query, value, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s by %s: %w", r.mapping.table, field, err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// ListAll lists entities ordered by id
func (r *entityRepository[T]) ListAll(ctx context.Context, limit, offset int) ([]*T, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", r.columnList(), r.mapping.table)

	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.mapping.table, err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// Count returns the total number of rows in the table
func (r *entityRepository[T]) Count(ctx context.Context) (int64, error) {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.mapping.table)

	var count int64
	if err := executor.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.mapping.table, err)
	}
	return count, nil
}

// Create inserts the entity and fills in its generated id
func (r *entityRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	executor := GetExecutor(ctx, r.db)

	placeholders := make([]string, len(r.mapping.insertCols))
	for i := range r.mapping.insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.mapping.table,
		strings.Join(r.mapping.insertCols, ", "),
		strings.Join(placeholders, ", "),
	)

	var id int64
	if err := executor.QueryRowContext(ctx, query, r.mapping.insertArgs(entity)...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.mapping.table, err)
	}
	r.mapping.setID(entity, id)

	r.logger.Debug("entity created",
		zap.String("table", r.mapping.table),
		zap.Int64("id", id),
	)

	return entity, nil
}

// Update applies the whitelisted column changes and returns the
// refetched row. Keys are sorted so the generated SET clause is
// deterministic. An empty changes map is a caller bug.
func (r *entityRepository[T]) Update(ctx context.Context, id int64, changes map[string]interface{}) (*T, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("update %s id %d: no changes given", r.mapping.table, id)
	}

	executor := GetExecutor(ctx, r.db)

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	setClauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	for i, k := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, changes[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.mapping.table, strings.Join(setClauses, ", "), len(keys)+1)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.mapping.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s id %d: %w", r.mapping.table, id, repositories.ErrNotFound)
	}

	r.logger.Debug("entity updated",
		zap.String("table", r.mapping.table),
		zap.Int64("id", id),
		zap.Strings("columns", keys),
	)

	return r.GetByIDOrFail(ctx, id)
}

// Delete removes the entity by id, returning ErrNotFound when absent
func (r *entityRepository[T]) Delete(ctx context.Context, id int64) error {
	executor := GetExecutor(ctx, r.db)

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.mapping.table)

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.mapping.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s id %d: %w", r.mapping.table, id, repositories.ErrNotFound)
	}

	r.logger.Debug("entity deleted",
		zap.String("table", r.mapping.table),
		zap.Int64("id", id),
	)

	return nil
}

func (r *entityRepository[T]) collectRows(rows *sql.Rows) ([]*T, error) {
	entities := make([]*T, 0)
	for rows.Next() {
		entity, err := r.mapping.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.mapping.table, err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.mapping.table, err)
	}
	return entities, nil
}
