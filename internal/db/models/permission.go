package models

import "time"

// PermissionNameSeparator joins resource and action into a permission name.
const PermissionNameSeparator = ":"

// Permission represents a specific permission in the authorization system.
// Permissions define granular access rights to a resource and an action on it.
// They are linked to roles and can be granted or denied per user with overrides.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique permission identifier in resource:action format (e.g., "service_orders:approve").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Resource is the resource this permission applies to (e.g., "service_orders", "payroll").
	Resource string `gorm:"size:50;not null;index" json:"resource"`
	// Action is the action allowed on the resource (e.g., "read", "approve", "export").
	Action string `gorm:"size:50;not null" json:"action"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// PermissionName builds the catalog name of a resource/action pair.
func PermissionName(resource, action string) string {
	return resource + PermissionNameSeparator + action
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
