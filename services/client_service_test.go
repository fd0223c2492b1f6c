package services

import (
	"testing"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClientService(repo *MockClientRepository, auditRepo *recordingAuditRepository, notifier *spyNotifier) *ClientService {
	logger := zap.NewNop()
	recorder := audit.NewRecorder(auditRepo, logger)
	return NewClientService(repo, recorder, passthroughTxManager{}, notifier, logger)
}

func TestClientService_Create(t *testing.T) {
	t.Run("normalizes a national phone number before storing it", func(t *testing.T) {
		repo := new(MockClientRepository)
		notifier := &spyNotifier{}
		service := newTestClientService(repo, &recordingAuditRepository{}, notifier)

		repo.On("GetByPhone", mock.Anything, "+584121234567").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Client) bool {
			return c.Phone != nil && *c.Phone == "+584121234567"
		})).Return(&models.Client{ID: 1, ClientType: models.ClientTypeNatural, ContactName: "Ana Pérez", Phone: strPtr("+584121234567")}, nil)

		created, err := service.Create(actorContext(1), CreateClientInput{
			ClientType:  models.ClientTypeNatural,
			ContactName: "Ana Pérez",
			Phone:       strPtr("0412-1234567"),
		})

		require.NoError(t, err)
		assert.Equal(t, "+584121234567", *created.Phone)
		assert.Equal(t, 1, notifier.newClientCalls)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a juridical client without a company name", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.Create(actorContext(1), CreateClientInput{
			ClientType:  models.ClientTypeJuridical,
			ContactName: "Pedro Gómez",
		})

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Contains(t, err.Error(), "Company name is required for juridical clients")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a phone number already registered to another client", func(t *testing.T) {
		repo := new(MockClientRepository)
		notifier := &spyNotifier{}
		service := newTestClientService(repo, &recordingAuditRepository{}, notifier)

		repo.On("GetByPhone", mock.Anything, "+584121234567").
			Return(&models.Client{ID: 7, ContactName: "Otro Cliente"}, nil)

		_, err := service.Create(actorContext(1), CreateClientInput{
			ClientType:  models.ClientTypeNatural,
			ContactName: "Ana Pérez",
			Phone:       strPtr("+584121234567"),
		})

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Equal(t, "+584121234567", domain.GetErrorDetails(err)["phone"])
		assert.Zero(t, notifier.newClientCalls)
	})

	t.Run("rejects an unparseable phone number", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.Create(actorContext(1), CreateClientInput{
			ClientType:  models.ClientTypeNatural,
			ContactName: "Ana Pérez",
			Phone:       strPtr("not a number"),
		})

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("rejects an unknown client type", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.Create(actorContext(1), CreateClientInput{
			ClientType:  models.ClientType("corporate"),
			ContactName: "Ana Pérez",
		})

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestClientService_Update(t *testing.T) {
	t.Run("cannot turn a client juridical without a company name", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		current := &models.Client{ID: 5, ClientType: models.ClientTypeNatural, ContactName: "Ana Pérez"}
		repo.On("GetByIDOrFail", mock.Anything, int64(5)).Return(current, nil)

		juridical := models.ClientTypeJuridical
		_, err := service.Update(actorContext(1), 5, models.ClientPatch{ClientType: &juridical})

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Contains(t, err.Error(), "Company name is required for juridical clients")
	})

	t.Run("turning a client juridical together with a company name is allowed", func(t *testing.T) {
		repo := new(MockClientRepository)
		auditRepo := &recordingAuditRepository{}
		service := newTestClientService(repo, auditRepo, &spyNotifier{})

		current := &models.Client{ID: 5, ClientType: models.ClientTypeNatural, ContactName: "Ana Pérez"}
		updated := &models.Client{ID: 5, ClientType: models.ClientTypeJuridical, ContactName: "Ana Pérez", CompanyName: strPtr("Acme C.A.")}

		repo.On("GetByIDOrFail", mock.Anything, int64(5)).Return(current, nil)
		repo.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(changes map[string]interface{}) bool {
			return changes["client_type"] == "juridical" && changes["company_name"] == "Acme C.A."
		})).Return(updated, nil)

		juridical := models.ClientTypeJuridical
		result, err := service.Update(actorContext(1), 5, models.ClientPatch{
			ClientType:  &juridical,
			CompanyName: strPtr("Acme C.A."),
		})

		require.NoError(t, err)
		assert.Equal(t, models.ClientTypeJuridical, result.ClientType)
		assert.Len(t, auditRepo.entries, 1)
		repo.AssertExpectations(t)
	})

	t.Run("a client keeps its own phone number across updates", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		current := &models.Client{ID: 5, ClientType: models.ClientTypeNatural, ContactName: "Ana Pérez", Phone: strPtr("+584121234567")}
		repo.On("GetByIDOrFail", mock.Anything, int64(5)).Return(current, nil)
		repo.On("GetByPhone", mock.Anything, "+584121234567").Return(current, nil)

		result, err := service.Update(actorContext(1), 5, models.ClientPatch{
			Phone: strPtr("+58 412 123 4567"),
		})

		require.NoError(t, err)
		assert.Equal(t, current, result)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClientService_Search(t *testing.T) {
	t.Run("requires a search term", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.Search(actorContext(1), "", 50, 0)

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("delegates to the repository", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		expected := []*models.Client{{ID: 1, ContactName: "Ana Pérez"}}
		repo.On("SearchByName", mock.Anything, "Ana", 50, 0).Return(expected, nil)

		results, err := service.Search(actorContext(1), "Ana", 50, 0)

		require.NoError(t, err)
		assert.Equal(t, expected, results)
	})
}

func TestClientService_AdvancedSearch(t *testing.T) {
	t.Run("normalizes the phone criterion", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		repo.On("AdvancedSearch", mock.Anything, mock.MatchedBy(func(f models.ClientFilter) bool {
			return f.Phone != nil && *f.Phone == "+584121234567"
		}), 50, 0).Return([]*models.Client{}, nil)

		_, err := service.AdvancedSearch(actorContext(1), models.ClientFilter{
			Phone: strPtr("0412-1234567"),
		}, 50, 0)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an invalid phone criterion", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.AdvancedSearch(actorContext(1), models.ClientFilter{
			Phone: strPtr("not a number"),
		}, 50, 0)

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestClientService_GetByPhone(t *testing.T) {
	t.Run("normalizes the number before the lookup", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		stored := &models.Client{ID: 3, ClientType: models.ClientTypeNatural, ContactName: "Ana Pérez", Phone: strPtr("+584121234567")}
		repo.On("GetByPhone", mock.Anything, "+584121234567").Return(stored, nil)

		client, err := service.GetByPhone(actorContext(1), "0412-1234567")

		require.NoError(t, err)
		assert.Equal(t, int64(3), client.ID)
		repo.AssertExpectations(t)
	})

	t.Run("returns not found for an unknown number", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		repo.On("GetByPhone", mock.Anything, "+584121234567").Return(nil, nil)

		_, err := service.GetByPhone(actorContext(1), "+584121234567")

		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
	})

	t.Run("rejects an unparseable number", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		_, err := service.GetByPhone(actorContext(1), "not a number")

		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		repo.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
	})
}

func TestClientService_CheckExists(t *testing.T) {
	t.Run("reports true when the number is registered", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		repo.On("GetByPhone", mock.Anything, "+584121234567").
			Return(&models.Client{ID: 5, Phone: strPtr("+584121234567")}, nil)

		exists, err := service.CheckExists(actorContext(1), "0412-1234567")

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("reports false when no client holds the number", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := newTestClientService(repo, &recordingAuditRepository{}, &spyNotifier{})

		repo.On("GetByPhone", mock.Anything, "+584121234567").Return(nil, nil)

		exists, err := service.CheckExists(actorContext(1), "+584121234567")

		require.NoError(t, err)
		assert.False(t, exists)
	})
}
