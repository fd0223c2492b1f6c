package postgres

import (
	"context"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"go.uber.org/zap"
)

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	*entityRepository[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	mapping := entityMapping[models.User]{
		table: "users",
		columns: []string{
			"id", "username", "email", "hashed_password", "role",
			"is_active", "created_at", "updated_at",
		},
		scanRow: func(s rowScanner) (*models.User, error) {
			var u models.User
			if err := s.Scan(
				&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.Role,
				&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
			); err != nil {
				return nil, err
			}
			return &u, nil
		},
		insertCols: []string{
			"username", "email", "hashed_password", "role",
			"is_active", "created_at", "updated_at",
		},
		insertArgs: func(u *models.User) []interface{} {
			return []interface{}{
				u.Username, u.Email, u.HashedPassword, u.Role,
				u.IsActive, u.CreatedAt, u.UpdatedAt,
			}
		},
		setID: func(u *models.User, id int64) { u.ID = id },
	}

	return &UserRepository{
		entityRepository: newEntityRepository(db, logger, mapping),
	}
}

// GetByUsername retrieves a user by username, returning (nil, nil) when absent
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.GetByField(ctx, "username", username)
}

// GetByEmail retrieves a user by email, returning (nil, nil) when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.GetByField(ctx, "email", email)
}

// ListActive lists active users ordered by id
func (r *UserRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return r.ListByField(ctx, "is_active", true, limit, offset)
}
