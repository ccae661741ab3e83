package models

import "time"

// UserRole represents the many-to-many relationship between users and roles.
// Roles are additive, a user holding several roles receives the union of their permissions.
type UserRole struct {
	// UserID is the ID of the user in this membership.
	UserID uint64 `gorm:"primaryKey;column:user_id" json:"user_id"`
	// RoleID is the ID of the role in this membership.
	RoleID uint `gorm:"primaryKey;column:role_id;index" json:"role_id"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID" json:"-"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID" json:"-"`
	// CreatedAt is the timestamp when the user was given the role (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
