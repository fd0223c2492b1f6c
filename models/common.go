package models

import "time"

// isoTime serializes a timestamp for audit snapshots
func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// strValue unwraps an optional string for snapshots; nil stays nil so
// the audit record distinguishes "empty" from "not set"
func strValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// int64Value unwraps an optional numeric foreign key for snapshots
func int64Value(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
