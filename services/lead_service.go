package services

import (
	"context"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/salesdesk/crm-backend/services/notify"
	"github.com/salesdesk/crm-backend/services/tracking"
	"go.uber.org/zap"
)

// CreateLeadInput holds the fields for opening a new sales lead
type CreateLeadInput struct {
	ClientID     int64
	Channel      models.LeadChannel
	AdminNotes   *string
	SalesNotes   *string
	AssignedToID *int64
	CreatedByID  int64
}

// LeadStats summarizes the sales funnel
type LeadStats struct {
	Total     int64                        `json:"total"`
	ByStatus  map[models.LeadStatus]int64  `json:"by_status"`
	ByChannel map[models.LeadChannel]int64 `json:"by_channel"`
}

// LeadService manages sales leads. Leads always belong to an existing
// client, and status transitions notify the sales team only when the
// status actually changes.
type LeadService struct {
	leads    repositories.LeadRepository
	clients  repositories.ClientRepository
	users    repositories.UserRepository
	tracker  *tracking.Tracker[models.Lead, models.LeadPatch]
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leads repositories.LeadRepository,
	clients repositories.ClientRepository,
	users repositories.UserRepository,
	recorder *audit.Recorder,
	txMgr repositories.TransactionManager,
	notifier notify.Notifier,
	logger *zap.Logger,
) *LeadService {
	tracker := tracking.NewTracker(leads, recorder, txMgr, leadDescriptor(), logger)
	return &LeadService{
		leads:    leads,
		clients:  clients,
		users:    users,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
	}
}

// leadDescriptor binds lead fields to their columns for change tracking
func leadDescriptor() tracking.Descriptor[models.Lead, models.LeadPatch] {
	return tracking.Descriptor[models.Lead, models.LeadPatch]{
		Table:    models.Lead{}.TableName(),
		Resource: "lead",
		ID:       func(l *models.Lead) int64 { return l.ID },
		Snapshot: func(l *models.Lead) map[string]interface{} { return l.Snapshot() },
		Fields: []tracking.FieldBinding[models.Lead, models.LeadPatch]{
			{
				Column: "client_id",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) {
					if p.ClientID == nil {
						return nil, false
					}
					return *p.ClientID, true
				},
				Current: func(l *models.Lead) interface{} { return l.ClientID },
			},
			{
				Column:   "channel",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) { return enumValue(p.Channel) },
				Current:  func(l *models.Lead) interface{} { return string(l.Channel) },
			},
			{
				Column:   "status",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) { return enumValue(p.Status) },
				Current:  func(l *models.Lead) interface{} { return string(l.Status) },
			},
			{
				Column:   "admin_notes",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) { return stringValue(p.AdminNotes) },
				Current:  func(l *models.Lead) interface{} { return optString(l.AdminNotes) },
			},
			{
				Column:   "sales_notes",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) { return stringValue(p.SalesNotes) },
				Current:  func(l *models.Lead) interface{} { return optString(l.SalesNotes) },
			},
			{
				Column: "assigned_to_id",
				Proposed: func(p *models.LeadPatch) (interface{}, bool) {
					if p.AssignedToID == nil {
						return nil, false
					}
					return *p.AssignedToID, true
				},
				Current: func(l *models.Lead) interface{} {
					if l.AssignedToID == nil {
						return nil
					}
					return *l.AssignedToID
				},
			},
		},
	}
}

// Create opens a new sales lead against an existing client. On success
// the sales team is notified best-effort.
func (s *LeadService) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	if !input.Channel.Valid() {
		return nil, domain.NewValidationError("Invalid lead channel")
	}

	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, domain.WrapInternal("failed to check client", err)
	}
	if client == nil {
		return nil, domain.NewValidationError("Client does not exist").
			WithDetail("client_id", input.ClientID)
	}

	if err := s.checkAssignee(ctx, input.AssignedToID); err != nil {
		return nil, err
	}

	lead := models.NewLead(input.ClientID, input.Channel, input.CreatedByID)
	lead.AdminNotes = input.AdminNotes
	lead.SalesNotes = input.SalesNotes
	lead.AssignedToID = input.AssignedToID

	created, err := s.tracker.Create(ctx, lead)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyNewLead(ctx, created, client)

	return created, nil
}

// Get retrieves a lead by id
func (s *LeadService) Get(ctx context.Context, id int64) (*models.Lead, error) {
	return s.tracker.Get(ctx, id)
}

// Update applies a patch to a lead. A status change that survives the
// diff triggers a sales team notification; setting the same status
// again is a complete no-op with no write, no audit entry and no mail.
func (s *LeadService) Update(ctx context.Context, id int64, patch models.LeadPatch) (*models.Lead, error) {
	current, err := s.tracker.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Channel != nil && !patch.Channel.Valid() {
		return nil, domain.NewValidationError("Invalid lead channel")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.NewValidationError("Invalid lead status")
	}

	if patch.ClientID != nil && *patch.ClientID != current.ClientID {
		client, err := s.clients.GetByID(ctx, *patch.ClientID)
		if err != nil {
			return nil, domain.WrapInternal("failed to check client", err)
		}
		if client == nil {
			return nil, domain.NewValidationError("Client does not exist").
				WithDetail("client_id", *patch.ClientID)
		}
	}

	if err := s.checkAssignee(ctx, patch.AssignedToID); err != nil {
		return nil, err
	}

	oldStatus := current.Status

	updated, err := s.tracker.Update(ctx, id, &patch)
	if err != nil {
		return nil, err
	}

	if updated.Status != oldStatus {
		if client, err := s.clients.GetByID(ctx, updated.ClientID); err == nil && client != nil {
			s.notifier.NotifyLeadStatusChange(ctx, updated, client, oldStatus, updated.Status)
		}
	}

	return updated, nil
}

// ChangeStatus moves a lead to a new funnel status
func (s *LeadService) ChangeStatus(ctx context.Context, id int64, status models.LeadStatus) (*models.Lead, error) {
	return s.Update(ctx, id, models.LeadPatch{Status: &status})
}

// Assign hands a lead to a user. This is a restricted update touching
// only the assignee field; the usual active-user check applies.
func (s *LeadService) Assign(ctx context.Context, id int64, assigneeID int64) (*models.Lead, error) {
	return s.Update(ctx, id, models.LeadPatch{AssignedToID: &assigneeID})
}

// Delete removes a lead and records its final snapshot
func (s *LeadService) Delete(ctx context.Context, id int64) error {
	return s.tracker.Delete(ctx, id)
}

// List returns leads matching the filter, newest first
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.Lead, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.NewValidationError("Invalid lead status")
	}
	if filter.Channel != nil && !filter.Channel.Valid() {
		return nil, domain.NewValidationError("Invalid lead channel")
	}
	return s.leads.List(ctx, filter, limit, offset)
}

// Recent returns the most recently created leads
func (s *LeadService) Recent(ctx context.Context, limit int) ([]*models.Lead, error) {
	return s.leads.Recent(ctx, limit)
}

// Stats summarizes the sales funnel by status and channel
func (s *LeadService) Stats(ctx context.Context) (*LeadStats, error) {
	byStatus, err := s.leads.CountByStatus(ctx)
	if err != nil {
		return nil, domain.WrapInternal("failed to count leads by status", err)
	}
	byChannel, err := s.leads.CountByChannel(ctx)
	if err != nil {
		return nil, domain.WrapInternal("failed to count leads by channel", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &LeadStats{
		Total:     total,
		ByStatus:  byStatus,
		ByChannel: byChannel,
	}, nil
}

// StatusCounts returns the number of leads in each funnel status
func (s *LeadService) StatusCounts(ctx context.Context) (map[models.LeadStatus]int64, error) {
	counts, err := s.leads.CountByStatus(ctx)
	if err != nil {
		return nil, domain.WrapInternal("failed to count leads by status", err)
	}
	return counts, nil
}

// ChannelCounts returns the number of leads per acquisition channel
func (s *LeadService) ChannelCounts(ctx context.Context) (map[models.LeadChannel]int64, error) {
	counts, err := s.leads.CountByChannel(ctx)
	if err != nil {
		return nil, domain.WrapInternal("failed to count leads by channel", err)
	}
	return counts, nil
}

// checkAssignee verifies that an assignee, when given, is an existing
// active user
func (s *LeadService) checkAssignee(ctx context.Context, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		return domain.WrapInternal("failed to check assignee", err)
	}
	if user == nil {
		return domain.NewValidationError("Assigned user does not exist").
			WithDetail("assigned_to_id", *assigneeID)
	}
	if !user.IsActive {
		return domain.NewValidationError("Assigned user is inactive").
			WithDetail("assigned_to_id", *assigneeID)
	}
	return nil
}
