package models

import (
	"time"
)

// LeadChannel identifies where a lead came from
type LeadChannel string

const (
	ChannelWeb       LeadChannel = "web"
	ChannelWhatsApp  LeadChannel = "whatsapp"
	ChannelInstagram LeadChannel = "instagram"
	ChannelManual    LeadChannel = "manual"
)

// Valid reports whether the channel is known
func (c LeadChannel) Valid() bool {
	switch c {
	case ChannelWeb, ChannelWhatsApp, ChannelInstagram, ChannelManual:
		return true
	}
	return false
}

// LeadStatus tracks a lead through the sales funnel
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusClosed    LeadStatus = "closed"
	LeadStatusDiscarded LeadStatus = "discarded"
)

// Valid reports whether the status is known
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusClosed, LeadStatusDiscarded:
		return true
	}
	return false
}

// Lead represents a sales lead tied to a client
type Lead struct {
	ID           int64       `json:"id" db:"id"`
	ClientID     int64       `json:"client_id" db:"client_id"`
	Channel      LeadChannel `json:"channel" db:"channel"`
	Status       LeadStatus  `json:"status" db:"status"`
	AdminNotes   *string     `json:"admin_notes,omitempty" db:"admin_notes"`
	SalesNotes   *string     `json:"sales_notes,omitempty" db:"sales_notes"`
	CreatedByID  int64       `json:"created_by_id" db:"created_by_id"`
	AssignedToID *int64      `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a new Lead instance with status "new"
func NewLead(clientID int64, channel LeadChannel, createdByID int64) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ClientID:    clientID,
		Channel:     channel,
		Status:      LeadStatusNew,
		CreatedByID: createdByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Snapshot returns the full field mapping used for audit snapshots
func (l *Lead) Snapshot() map[string]any {
	return map[string]any{
		"id":             l.ID,
		"client_id":      l.ClientID,
		"channel":        string(l.Channel),
		"status":         string(l.Status),
		"admin_notes":    strValue(l.AdminNotes),
		"sales_notes":    strValue(l.SalesNotes),
		"created_by_id":  l.CreatedByID,
		"assigned_to_id": int64Value(l.AssignedToID),
		"created_at":     isoTime(l.CreatedAt),
		"updated_at":     isoTime(l.UpdatedAt),
	}
}

// LeadPatch carries proposed field changes for a lead update.
// Nil pointers mean "no change", never "clear this field".
type LeadPatch struct {
	ClientID     *int64
	Channel      *LeadChannel
	Status       *LeadStatus
	AdminNotes   *string
	SalesNotes   *string
	AssignedToID *int64
}

// LeadFilter holds the optional listing criteria for leads
type LeadFilter struct {
	ClientID     *int64
	Status       *LeadStatus
	Channel      *LeadChannel
	CreatedByID  *int64
	AssignedToID *int64
	DateFrom     *time.Time
	DateTo       *time.Time
}
