package auth

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

type actorKey struct{}

// WithActor returns a context carrying the ID of the user performing administrative changes.
func WithActor(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user ID, 0 when the change is made by the system.
func ActorFrom(ctx context.Context) uint64 {
	id, _ := ctx.Value(actorKey{}).(uint64)
	return id
}

func writeAudit(tx *gorm.DB, actor uint64, action, target, detail string) error {
	entry := models.AuditEntry{
		ID:      uuid.NewString(),
		ActorID: actor,
		Action:  action,
		Target:  target,
		Detail:  clipDetail(detail),
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}

// clipDetail cuts detail to the audit column size on a UTF-8 boundary and marks the cut.
func clipDetail(detail string) string {
	if len(detail) <= models.AuditDetailSize {
		return detail
	}

	const marker = " ..."

	cut := models.AuditDetailSize - len(marker)
	for cut > 0 && !utf8.RuneStart(detail[cut]) {
		cut--
	}

	return detail[:cut] + marker
}

func roleTarget(id uint) string {
	return fmt.Sprintf("role:%d", id)
}

func userTarget(id uint64) string {
	return fmt.Sprintf("user:%d", id)
}

func permissionTarget(id uint) string {
	return fmt.Sprintf("permission:%d", id)
}
