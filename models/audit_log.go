package models

import (
	"encoding/json"
	"time"
)

// AuditAction represents the kind of mutation being audited
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog is an immutable record of who changed what, when, with
// before/after snapshots. Entries are written exactly once per
// successful mutation and never updated or deleted.
type AuditLog struct {
	ID          int64           `json:"id" db:"id"`
	TableName   string          `json:"table_name" db:"table_name"`
	RecordID    int64           `json:"record_id" db:"record_id"`
	Action      AuditAction     `json:"action" db:"action"`
	OldValues   json.RawMessage `json:"old_values,omitempty" db:"old_values"`
	NewValues   json.RawMessage `json:"new_values,omitempty" db:"new_values"`
	ChangedByID int64           `json:"changed_by_id" db:"changed_by_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// AuditFilter holds the optional listing criteria for audit logs
type AuditFilter struct {
	TableName   *string
	RecordID    *int64
	ChangedByID *int64
	Action      *AuditAction
}
