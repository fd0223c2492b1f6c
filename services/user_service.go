package services

import (
	"context"
	"errors"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/salesdesk/crm-backend/services/tracking"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput holds the fields for registering a new user account
type CreateUserInput struct {
	Username string
	Password string
	Email    *string
	Role     models.UserRole
}

// UpdateUserInput holds optional account changes. A non-nil Password
// is hashed before it reaches the persistence or audit layers.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *models.UserRole
	IsActive *bool
}

// UserService manages user accounts and credential verification.
// Passwords are bcrypt-hashed on the way in; only hashes are stored,
// diffed and audited.
type UserService struct {
	users   repositories.UserRepository
	tracker *tracking.Tracker[models.User, models.UserPatch]
	logger  *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users repositories.UserRepository,
	recorder *audit.Recorder,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *UserService {
	tracker := tracking.NewTracker(users, recorder, txMgr, userDescriptor(), logger)
	return &UserService{
		users:   users,
		tracker: tracker,
		logger:  logger,
	}
}

// userDescriptor binds user fields to their columns for change tracking
func userDescriptor() tracking.Descriptor[models.User, models.UserPatch] {
	return tracking.Descriptor[models.User, models.UserPatch]{
		Table:    models.User{}.TableName(),
		Resource: "user",
		ID:       func(u *models.User) int64 { return u.ID },
		Snapshot: func(u *models.User) map[string]interface{} { return u.Snapshot() },
		Fields: []tracking.FieldBinding[models.User, models.UserPatch]{
			{
				Column:   "username",
				Proposed: func(p *models.UserPatch) (interface{}, bool) { return stringValue(p.Username) },
				Current:  func(u *models.User) interface{} { return u.Username },
			},
			{
				Column:   "email",
				Proposed: func(p *models.UserPatch) (interface{}, bool) { return stringValue(p.Email) },
				Current:  func(u *models.User) interface{} { return optString(u.Email) },
			},
			{
				Column:   "hashed_password",
				Proposed: func(p *models.UserPatch) (interface{}, bool) { return stringValue(p.HashedPassword) },
				Current:  func(u *models.User) interface{} { return u.HashedPassword },
			},
			{
				Column:   "role",
				Proposed: func(p *models.UserPatch) (interface{}, bool) { return enumValue(p.Role) },
				Current:  func(u *models.User) interface{} { return string(u.Role) },
			},
			{
				Column: "is_active",
				Proposed: func(p *models.UserPatch) (interface{}, bool) {
					if p.IsActive == nil {
						return nil, false
					}
					return *p.IsActive, true
				},
				Current: func(u *models.User) interface{} { return u.IsActive },
			},
		},
	}
}

// Create registers a new user account with a unique username and,
// when given, a unique email
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.Username == "" {
		return nil, domain.NewValidationError("Username is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.NewValidationError("Password must be at least 8 characters")
	}
	if !input.Role.Valid() {
		return nil, domain.NewValidationError("Invalid user role")
	}

	if err := s.checkUsernameFree(ctx, input.Username, 0); err != nil {
		return nil, err
	}
	if input.Email != nil && *input.Email != "" {
		if err := s.checkEmailFree(ctx, *input.Email, 0); err != nil {
			return nil, err
		}
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, domain.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(input.Username, hashed, input.Email, input.Role)
	return s.tracker.Create(ctx, user)
}

// Get retrieves a user by id
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.tracker.Get(ctx, id)
}

// Update applies account changes. A new password is hashed first, so
// the audit diff shows only hash values.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*models.User, error) {
	if input.Username != nil {
		if *input.Username == "" {
			return nil, domain.NewValidationError("Username is required")
		}
		if err := s.checkUsernameFree(ctx, *input.Username, id); err != nil {
			return nil, err
		}
	}
	if input.Email != nil && *input.Email != "" {
		if err := s.checkEmailFree(ctx, *input.Email, id); err != nil {
			return nil, err
		}
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, domain.NewValidationError("Invalid user role")
	}

	patch := models.UserPatch{
		Username: input.Username,
		Email:    input.Email,
		Role:     input.Role,
		IsActive: input.IsActive,
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, domain.NewValidationError("Password must be at least 8 characters")
		}
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, domain.WrapInternal("failed to hash password", err)
		}
		patch.HashedPassword = &hashed
	}

	return s.tracker.Update(ctx, id, &patch)
}

// Deactivate disables a user account without deleting it
func (s *UserService) Deactivate(ctx context.Context, id int64) (*models.User, error) {
	inactive := false
	return s.tracker.Update(ctx, id, &models.UserPatch{IsActive: &inactive})
}

// Delete removes a user account and records its final snapshot
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.tracker.Delete(ctx, id)
}

// List returns users ordered by id
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.ListAll(ctx, limit, offset)
}

// ListActive returns only users that can sign in
func (s *UserService) ListActive(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.ListActive(ctx, limit, offset)
}

// Authenticate verifies credentials and returns the matching active
// user. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.WrapInternal("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.WrapInternal("failed to verify password", err)
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	return user, nil
}

func (s *UserService) checkUsernameFree(ctx context.Context, username string, excludeID int64) error {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.WrapInternal("failed to check username uniqueness", err)
	}
	if existing != nil && existing.ID != excludeID {
		return domain.NewValidationError("A user with this username already exists").
			WithDetail("username", username)
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, excludeID int64) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.WrapInternal("failed to check email uniqueness", err)
	}
	if existing != nil && existing.ID != excludeID {
		return domain.NewValidationError("A user with this email already exists").
			WithDetail("email", email)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
