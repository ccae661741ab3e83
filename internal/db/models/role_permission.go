package models

import "time"

// RolePermission represents the many-to-many relationship between roles and permissions.
// Links are never rewritten in place: replacing a role's permission set only inserts
// missing links and deletes surplus ones, so CreatedAt reflects when a grant was made.
type RolePermission struct {
	// RoleID is the ID of the role in this mapping.
	RoleID uint `gorm:"primaryKey;column:role_id" json:"role_id"`
	// PermissionID is the ID of the permission in this mapping.
	PermissionID uint `gorm:"primaryKey;column:permission_id;index" json:"permission_id"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID" json:"-"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID" json:"-"`
	// CreatedAt is the timestamp when the link was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
