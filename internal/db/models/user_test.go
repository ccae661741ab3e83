package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordRoundTrip(t *testing.T) {
	u := User{Password: HashPassword("s3cr3t")}

	assert.True(t, u.VerifyPassword("s3cr3t"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestVerifyPasswordWithoutHash(t *testing.T) {
	u := User{}

	assert.False(t, u.VerifyPassword(""))
}

func TestPermissionName(t *testing.T) {
	assert.Equal(t, "service_orders:approve", PermissionName("service_orders", "approve"))
}
