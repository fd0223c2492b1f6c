package models

import (
	"time"
)

// ClientType distinguishes individual clients from companies
type ClientType string

const (
	ClientTypeNatural   ClientType = "natural"
	ClientTypeJuridical ClientType = "juridical"
)

// Valid reports whether the client type is known
func (t ClientType) Valid() bool {
	return t == ClientTypeNatural || t == ClientTypeJuridical
}

// Client represents a CRM client record
type Client struct {
	ID          int64      `json:"id" db:"id"`
	ClientType  ClientType `json:"client_type" db:"client_type"`
	ContactName string     `json:"contact_name" db:"contact_name"`
	CompanyName *string    `json:"company_name,omitempty" db:"company_name"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Email       *string    `json:"email,omitempty" db:"email"`
	Instagram   *string    `json:"instagram,omitempty" db:"instagram"`
	Address     *string    `json:"address,omitempty" db:"address"`
	Country     *string    `json:"country,omitempty" db:"country"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new Client instance
func NewClient(clientType ClientType, contactName string) *Client {
	now := time.Now().UTC()
	return &Client{
		ClientType:  clientType,
		ContactName: contactName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Snapshot returns the full field mapping used for audit snapshots
func (c *Client) Snapshot() map[string]any {
	return map[string]any{
		"id":           c.ID,
		"client_type":  string(c.ClientType),
		"contact_name": c.ContactName,
		"company_name": strValue(c.CompanyName),
		"phone":        strValue(c.Phone),
		"email":        strValue(c.Email),
		"instagram":    strValue(c.Instagram),
		"address":      strValue(c.Address),
		"country":      strValue(c.Country),
		"created_at":   isoTime(c.CreatedAt),
		"updated_at":   isoTime(c.UpdatedAt),
	}
}

// ClientPatch carries proposed field changes for a client update.
// Nil pointers mean "no change", never "clear this field".
type ClientPatch struct {
	ClientType  *ClientType
	ContactName *string
	CompanyName *string
	Phone       *string
	Email       *string
	Instagram   *string
	Address     *string
	Country     *string
}

// ClientFilter holds the advanced search criteria for clients.
// String filters match partially and case-insensitively except Phone,
// which matches the stored canonical number exactly.
type ClientFilter struct {
	ContactName *string
	CompanyName *string
	Phone       *string
	Email       *string
	Instagram   *string
	ClientType  *ClientType
	Country     *string
	DateFrom    *time.Time
	DateTo      *time.Time
}
