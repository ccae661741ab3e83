package models

import "time"

// UserPermission is a per-user override of a single permission.
// Granted=true grants the permission even if none of the user's roles does,
// Granted=false denies it even if a role grants it. There is at most one
// override per (user, permission) pair.
type UserPermission struct {
	// UserID is the ID of the user the override applies to.
	UserID uint64 `gorm:"primaryKey;column:user_id" json:"user_id"`
	// PermissionID is the ID of the overridden permission.
	PermissionID uint `gorm:"primaryKey;column:permission_id;index" json:"permission_id"`
	// Granted is the override direction.
	Granted bool `gorm:"not null" json:"granted"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID" json:"-"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID" json:"-"`
	// CreatedAt is the timestamp when the override was first set (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the override direction last changed (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the UserPermission model.
func (UserPermission) TableName() string {
	return "user_permissions"
}
