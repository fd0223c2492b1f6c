package services

import (
	"context"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/salesdesk/crm-backend/services/notify"
	"github.com/salesdesk/crm-backend/services/tracking"
	"github.com/salesdesk/crm-backend/utils"
	"go.uber.org/zap"
)

// CreateClientInput holds the fields for registering a new client
type CreateClientInput struct {
	ClientType  models.ClientType
	ContactName string
	CompanyName *string
	Phone       *string
	Email       *string
	Instagram   *string
	Address     *string
	Country     *string
}

// ClientService manages CRM clients: registration, audited updates,
// search and deletion. Phone numbers are canonicalized to E.164 before
// any uniqueness check or write.
type ClientService struct {
	clients  repositories.ClientRepository
	tracker  *tracking.Tracker[models.Client, models.ClientPatch]
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(
	clients repositories.ClientRepository,
	recorder *audit.Recorder,
	txMgr repositories.TransactionManager,
	notifier notify.Notifier,
	logger *zap.Logger,
) *ClientService {
	tracker := tracking.NewTracker(clients, recorder, txMgr, clientDescriptor(), logger)
	return &ClientService{
		clients:  clients,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
	}
}

// clientDescriptor binds client fields to their columns for change
// tracking
func clientDescriptor() tracking.Descriptor[models.Client, models.ClientPatch] {
	return tracking.Descriptor[models.Client, models.ClientPatch]{
		Table:    models.Client{}.TableName(),
		Resource: "client",
		ID:       func(c *models.Client) int64 { return c.ID },
		Snapshot: func(c *models.Client) map[string]interface{} { return c.Snapshot() },
		Fields: []tracking.FieldBinding[models.Client, models.ClientPatch]{
			{
				Column:   "client_type",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return enumValue(p.ClientType) },
				Current:  func(c *models.Client) interface{} { return string(c.ClientType) },
			},
			{
				Column:   "contact_name",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.ContactName) },
				Current:  func(c *models.Client) interface{} { return c.ContactName },
			},
			{
				Column:   "company_name",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.CompanyName) },
				Current:  func(c *models.Client) interface{} { return optString(c.CompanyName) },
			},
			{
				Column:   "phone",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.Phone) },
				Current:  func(c *models.Client) interface{} { return optString(c.Phone) },
			},
			{
				Column:   "email",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.Email) },
				Current:  func(c *models.Client) interface{} { return optString(c.Email) },
			},
			{
				Column:   "instagram",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.Instagram) },
				Current:  func(c *models.Client) interface{} { return optString(c.Instagram) },
			},
			{
				Column:   "address",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.Address) },
				Current:  func(c *models.Client) interface{} { return optString(c.Address) },
			},
			{
				Column:   "country",
				Proposed: func(p *models.ClientPatch) (interface{}, bool) { return stringValue(p.Country) },
				Current:  func(c *models.Client) interface{} { return optString(c.Country) },
			},
		},
	}
}

// Create registers a new client. A juridical client must carry a
// company name, and the phone number, when given, is normalized and
// must be unique. On success the sales team is notified best-effort.
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*models.Client, error) {
	if !input.ClientType.Valid() {
		return nil, domain.NewValidationError("Invalid client type")
	}
	if input.ContactName == "" {
		return nil, domain.NewValidationError("Contact name is required")
	}
	if input.ClientType == models.ClientTypeJuridical && !hasValue(input.CompanyName) {
		return nil, domain.NewValidationError("Company name is required for juridical clients")
	}

	phone, err := s.normalizePhone(ctx, input.Phone, 0)
	if err != nil {
		return nil, err
	}

	client := models.NewClient(input.ClientType, input.ContactName)
	client.CompanyName = input.CompanyName
	client.Phone = phone
	client.Email = input.Email
	client.Instagram = input.Instagram
	client.Address = input.Address
	client.Country = input.Country

	created, err := s.tracker.Create(ctx, client)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyNewClient(ctx, created)

	return created, nil
}

// Get retrieves a client by id
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	return s.tracker.Get(ctx, id)
}

// Update applies a patch to a client. The juridical company-name rule
// is checked against the merged state, so an update cannot leave a
// juridical client without a company name.
func (s *ClientService) Update(ctx context.Context, id int64, patch models.ClientPatch) (*models.Client, error) {
	current, err := s.tracker.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ClientType != nil && !patch.ClientType.Valid() {
		return nil, domain.NewValidationError("Invalid client type")
	}
	if patch.ContactName != nil && *patch.ContactName == "" {
		return nil, domain.NewValidationError("Contact name is required")
	}

	effectiveType := current.ClientType
	if patch.ClientType != nil {
		effectiveType = *patch.ClientType
	}
	effectiveCompany := current.CompanyName
	if patch.CompanyName != nil {
		effectiveCompany = patch.CompanyName
	}
	if effectiveType == models.ClientTypeJuridical && !hasValue(effectiveCompany) {
		return nil, domain.NewValidationError("Company name is required for juridical clients")
	}

	if patch.Phone != nil {
		phone, err := s.normalizePhone(ctx, patch.Phone, id)
		if err != nil {
			return nil, err
		}
		patch.Phone = phone
	}

	return s.tracker.Update(ctx, id, &patch)
}

// Delete removes a client and records its final snapshot
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	return s.tracker.Delete(ctx, id)
}

// List returns clients ordered by id
func (s *ClientService) List(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	return s.clients.ListAll(ctx, limit, offset)
}

// Count returns the total number of clients
func (s *ClientService) Count(ctx context.Context) (int64, error) {
	return s.clients.Count(ctx)
}

// Search finds clients by contact or company name
func (s *ClientService) Search(ctx context.Context, name string, limit, offset int) ([]*models.Client, error) {
	if name == "" {
		return nil, domain.NewValidationError("Search term is required")
	}
	return s.clients.SearchByName(ctx, name, limit, offset)
}

// GetByPhone finds the client holding a phone number. The number is
// normalized before the lookup so any accepted input format matches.
func (s *ClientService) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, domain.NewValidationError("Invalid phone number")
	}
	client, err := s.clients.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, domain.WrapInternal("failed to fetch client by phone", err)
	}
	if client == nil {
		return nil, domain.NewDomainError(domain.ErrorTypeNotFound, "client not found", nil).
			WithDetail("phone", normalized)
	}
	return client, nil
}

// CheckExists reports whether a client with the given phone number is
// already registered
func (s *ClientService) CheckExists(ctx context.Context, phone string) (bool, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return false, domain.NewValidationError("Invalid phone number")
	}
	client, err := s.clients.GetByPhone(ctx, normalized)
	if err != nil {
		return false, domain.WrapInternal("failed to check phone", err)
	}
	return client != nil, nil
}

// AdvancedSearch finds clients by any combination of criteria. A phone
// criterion is normalized the same way stored numbers are.
func (s *ClientService) AdvancedSearch(ctx context.Context, filter models.ClientFilter, limit, offset int) ([]*models.Client, error) {
	if filter.Phone != nil {
		normalized, err := utils.NormalizePhone(*filter.Phone)
		if err != nil {
			return nil, domain.NewValidationError("Invalid phone number")
		}
		filter.Phone = &normalized
	}
	return s.clients.AdvancedSearch(ctx, filter, limit, offset)
}

// normalizePhone canonicalizes a phone number and enforces uniqueness.
// excludeID skips the client being updated so it can keep its own
// number.
func (s *ClientService) normalizePhone(ctx context.Context, phone *string, excludeID int64) (*string, error) {
	if phone == nil || *phone == "" {
		return nil, nil
	}

	normalized, err := utils.NormalizePhone(*phone)
	if err != nil {
		return nil, domain.NewValidationError("Invalid phone number")
	}

	existing, err := s.clients.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, domain.WrapInternal("failed to check phone uniqueness", err)
	}
	if existing != nil && existing.ID != excludeID {
		return nil, domain.NewValidationError("A client with this phone number already exists").
			WithDetail("phone", normalized)
	}

	return &normalized, nil
}

// Field binding helpers shared by the entity descriptors

func stringValue(p *string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func optString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func hasValue(p *string) bool {
	return p != nil && *p != ""
}

// enumValue unwraps an optional string-kinded enum as a plain string
func enumValue[E ~string](p *E) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	return string(*p), true
}
