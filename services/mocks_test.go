package services

import (
	"context"

	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/stretchr/testify/mock"
)

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) GetByIDOrFail(ctx context.Context, id int64) (*models.Client, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) GetByField(ctx context.Context, field string, value interface{}) (*models.Client, error) {
	args := m.Called(ctx, field, value)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) ListByField(ctx context.Context, field string, value interface{}, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, field, value, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, entity *models.Client) (*models.Client, error) {
	args := m.Called(ctx, entity)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) (*models.Client, error) {
	args := m.Called(ctx, id, changes)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	args := m.Called(ctx, phone)
	if c := args.Get(0); c != nil {
		return c.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) SearchByName(ctx context.Context, name string, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, name, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) AdvancedSearch(ctx context.Context, filter models.ClientFilter, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, filter, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByIDOrFail(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByField(ctx context.Context, field string, value interface{}) (*models.User, error) {
	args := m.Called(ctx, field, value)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListByField(ctx context.Context, field string, value interface{}, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, field, value, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, entity *models.User) (*models.User, error) {
	args := m.Called(ctx, entity)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) (*models.User, error) {
	args := m.Called(ctx, id, changes)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) GetByIDOrFail(ctx context.Context, id int64) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) GetByField(ctx context.Context, field string, value interface{}) (*models.Lead, error) {
	args := m.Called(ctx, field, value)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) ListByField(ctx context.Context, field string, value interface{}, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, field, value, limit, offset)
	if l := args.Get(0); l != nil {
		return l.([]*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, limit, offset)
	if l := args.Get(0); l != nil {
		return l.([]*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, entity *models.Lead) (*models.Lead, error) {
	args := m.Called(ctx, entity)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) (*models.Lead, error) {
	args := m.Called(ctx, id, changes)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, filter, limit, offset)
	if l := args.Get(0); l != nil {
		return l.([]*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int64, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(map[models.LeadStatus]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) CountByChannel(ctx context.Context) (map[models.LeadChannel]int64, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(map[models.LeadChannel]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Recent(ctx context.Context, limit int) ([]*models.Lead, error) {
	args := m.Called(ctx, limit)
	if l := args.Get(0); l != nil {
		return l.([]*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingAuditRepository captures inserted audit entries
type recordingAuditRepository struct {
	entries []*models.AuditLog
}

func (r *recordingAuditRepository) Insert(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error) {
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *recordingAuditRepository) List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	return r.entries, nil
}

func (r *recordingAuditRepository) ListForRecord(ctx context.Context, tableName string, recordID int64) ([]*models.AuditLog, error) {
	return r.entries, nil
}

// passthroughTxManager runs the function without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, nil)
}

// spyNotifier counts notification calls and remembers the last status change
type spyNotifier struct {
	newClientCalls    int
	newLeadCalls      int
	statusChangeCalls int
	lastOldStatus     models.LeadStatus
	lastNewStatus     models.LeadStatus
}

func (s *spyNotifier) NotifyNewClient(ctx context.Context, client *models.Client) bool {
	s.newClientCalls++
	return true
}

func (s *spyNotifier) NotifyNewLead(ctx context.Context, lead *models.Lead, client *models.Client) bool {
	s.newLeadCalls++
	return true
}

func (s *spyNotifier) NotifyLeadStatusChange(ctx context.Context, lead *models.Lead, client *models.Client, oldStatus, newStatus models.LeadStatus) bool {
	s.statusChangeCalls++
	s.lastOldStatus = oldStatus
	s.lastNewStatus = newStatus
	return true
}

func actorContext(userID int64) context.Context {
	return middleware.WithUserID(context.Background(), &userID)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
