package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded for administrative mutations.
const (
	AuditActionContentApprove = "content.approve"
	AuditActionContentUpdate  = "content.update"
	AuditActionContentDelete  = "content.delete"
	AuditActionRoleChange     = "profile.role_change"
	AuditActionCategoryDelete = "category.delete"
)

// AuditLog captures who changed what through the admin surface.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues  json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string          `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
