package tracking

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/domain"
	"go.uber.org/zap"
)

// FieldBinding declares one mutable field of an entity: the column it
// maps to, how to read a proposed value from a patch, and how to read
// the current value from the entity. A Proposed second return of false
// means the patch does not touch this field.
type FieldBinding[T any, P any] struct {
	Column   string
	Proposed func(patch *P) (interface{}, bool)
	Current  func(entity *T) interface{}
}

// Descriptor binds an entity type to its table, identity, snapshot and
// mutable fields
type Descriptor[T any, P any] struct {
	Table    string
	Resource string
	ID       func(entity *T) int64
	Snapshot func(entity *T) map[string]interface{}
	Fields   []FieldBinding[T, P]
}

// Tracker is the audited mutation pipeline shared by all entity
// services. Every write goes through it: the primary row change and
// its audit entry commit in one transaction, and updates only touch
// fields whose proposed value actually differs from the stored one.
type Tracker[T any, P any] struct {
	repo     repositories.EntityRepository[T]
	recorder *audit.Recorder
	txMgr    repositories.TransactionManager
	desc     Descriptor[T, P]
	logger   *zap.Logger
}

// NewTracker creates a tracker for one entity type
func NewTracker[T any, P any](
	repo repositories.EntityRepository[T],
	recorder *audit.Recorder,
	txMgr repositories.TransactionManager,
	desc Descriptor[T, P],
	logger *zap.Logger,
) *Tracker[T, P] {
	return &Tracker[T, P]{
		repo:     repo,
		recorder: recorder,
		txMgr:    txMgr,
		desc:     desc,
		logger:   logger,
	}
}

// Get fetches an entity, translating a missing row into a not-found
// domain error
func (t *Tracker[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	entity, err := t.repo.GetByIDOrFail(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, domain.NewNotFoundError(t.desc.Resource, id)
		}
		return nil, domain.WrapInternal("failed to load "+t.desc.Resource, err)
	}
	return entity, nil
}

// Create persists a new entity and its creation audit entry in one
// transaction
func (t *Tracker[T, P]) Create(ctx context.Context, entity *T) (*T, error) {
	var created *T
	err := t.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var err error
		created, err = t.repo.Create(txCtx, entity)
		if err != nil {
			return domain.WrapInternal("failed to create "+t.desc.Resource, err)
		}

		return t.recorder.Record(txCtx, t.desc.Table, t.desc.ID(created), models.AuditActionCreate,
			nil, t.desc.Snapshot(created))
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("entity created",
		zap.String("resource", t.desc.Resource),
		zap.Int64("id", t.desc.ID(created)),
	)

	return created, nil
}

// Update applies a patch to an entity. Only fields whose proposed value
// differs from the stored one are written; when nothing differs the
// current entity is returned untouched, with no write and no audit
// entry. The audit diff holds exactly the changed fields, old and new.
func (t *Tracker[T, P]) Update(ctx context.Context, id int64, patch *P) (*T, error) {
	current, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes, oldValues, newValues := t.diff(current, patch)
	if len(changes) == 0 {
		t.logger.Debug("no field changes, skipping update",
			zap.String("resource", t.desc.Resource),
			zap.Int64("id", id),
		)
		return current, nil
	}

	changes["updated_at"] = time.Now().UTC()

	var updated *T
	err = t.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var err error
		updated, err = t.repo.Update(txCtx, id, changes)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return domain.NewNotFoundError(t.desc.Resource, id)
			}
			return domain.WrapInternal("failed to update "+t.desc.Resource, err)
		}

		return t.recorder.Record(txCtx, t.desc.Table, id, models.AuditActionUpdate, oldValues, newValues)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("entity updated",
		zap.String("resource", t.desc.Resource),
		zap.Int64("id", id),
		zap.Int("fields_changed", len(oldValues)),
	)

	return updated, nil
}

// Delete removes an entity, recording its final snapshot as the audit
// entry's old values
func (t *Tracker[T, P]) Delete(ctx context.Context, id int64) error {
	current, err := t.Get(ctx, id)
	if err != nil {
		return err
	}

	err = t.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		if err := t.repo.Delete(txCtx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return domain.NewNotFoundError(t.desc.Resource, id)
			}
			return domain.WrapInternal("failed to delete "+t.desc.Resource, err)
		}

		return t.recorder.Record(txCtx, t.desc.Table, id, models.AuditActionDelete,
			t.desc.Snapshot(current), nil)
	})
	if err != nil {
		return err
	}

	t.logger.Info("entity deleted",
		zap.String("resource", t.desc.Resource),
		zap.Int64("id", id),
	)

	return nil
}

// Changed reports whether the patch would modify the entity
func (t *Tracker[T, P]) Changed(entity *T, patch *P) bool {
	changes, _, _ := t.diff(entity, patch)
	return len(changes) > 0
}

// diff computes the column changes a patch would apply, together with
// the audit old/new value maps. Absent patch fields are no-ops, as are
// proposed values equal to the stored ones.
func (t *Tracker[T, P]) diff(entity *T, patch *P) (changes, oldValues, newValues map[string]interface{}) {
	changes = make(map[string]interface{})
	oldValues = make(map[string]interface{})
	newValues = make(map[string]interface{})

	for _, field := range t.desc.Fields {
		proposed, ok := field.Proposed(patch)
		if !ok {
			continue
		}
		current := field.Current(entity)
		if reflect.DeepEqual(proposed, current) {
			continue
		}
		changes[field.Column] = proposed
		oldValues[field.Column] = current
		newValues[field.Column] = proposed
	}

	return changes, oldValues, newValues
}
