package models

import "time"

// AuditDetailSize is the column size of AuditEntry.Detail.
const AuditDetailSize = 1024

// AuditEntry records one administrative change to roles, permissions or user access.
type AuditEntry struct {
	// ID is a random UUID.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// ActorID is the user who performed the change, 0 for system changes (seeding, CLI).
	ActorID uint64 `gorm:"index" json:"actor_id"`
	// Action names the operation, e.g. "role.permissions.set".
	Action string `gorm:"size:64;not null;index" json:"action"`
	// Target identifies the changed entity, e.g. "role:3" or "user:7".
	Target string `gorm:"size:64;not null" json:"target"`
	// Detail is a short human-readable description of the change, at most
	// AuditDetailSize bytes.
	Detail string `gorm:"size:1024" json:"detail"`
	// CreatedAt is the timestamp of the change (managed by GORM).
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the database table name for the AuditEntry model.
func (AuditEntry) TableName() string {
	return "audit_entries"
}
