package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/controller/permission"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

// Service is the permission resolution engine. It holds no state of its own
// besides the optional matrix cache; everything is read from the database.
type Service struct {
	db    *gorm.DB
	cache *matrixCache
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the per-user matrix cache. size <= 0 keeps it disabled.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = newMatrixCache(size, ttl)
	}
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, opts ...Option) *Service {
	initMetrics()

	s := &Service{db: db}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsGranted reports whether a user holds a permission. Unknown users and
// permissions fail with a not-found error; a failed lookup is never a grant.
func (s *Service) IsGranted(ctx context.Context, userID uint64, permissionName string) (bool, error) {
	d, err := s.Decide(ctx, userID, permissionName)
	if err != nil {
		return false, err
	}

	return d.Effective, nil
}

// Decide evaluates one permission for a user and reports which roles and which
// override took part in the decision.
func (s *Service) Decide(ctx context.Context, userID uint64, permissionName string) (Decision, error) {
	if m, ok := s.cache.get(userID); ok {
		if d, found := m.Lookup(permissionName); found {
			countDecision(d.Effective, nil)
			return d, nil
		}
	}

	var d Decision

	err := s.snapshot(ctx, func(tx *gorm.DB) (err error) {
		d, err = s.decide(tx, userID, permissionName)
		return err
	})
	if err != nil {
		d = Decision{}
	}

	countDecision(d.Effective, err)

	return d, err
}

// readOnlySnapshot makes every read of one evaluation see the same committed state.
var readOnlySnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// snapshot runs fn in a read-only transaction so a mutation committed between two of
// its queries cannot be half observed.
func (s *Service) snapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn, readOnlySnapshot)
}

func (s *Service) decide(db *gorm.DB, userID uint64, permissionName string) (Decision, error) {
	if err := user.Exists(db, userID); err != nil {
		return Decision{}, err
	}

	perm, err := permission.Get(db, permissionName)
	if err != nil {
		return Decision{}, err
	}

	var roles []string

	err = db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Where("user_roles.user_id = ? AND role_permissions.permission_id = ?", userID, perm.ID).
		Order("roles.name ASC").
		Pluck("roles.name", &roles).Error
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load granting roles: %w", err)
	}

	override := OverrideAbsent

	o, err := user.Override(db, userID, perm.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load override: %w", err)
	}

	if o != nil {
		override = OverrideOf(o.Granted)
	}

	return newDecision(*perm, RoleDerivedSignal{Roles: roles}, override), nil
}

// BuildEffectiveMatrix evaluates every catalog permission for a user.
func (s *Service) BuildEffectiveMatrix(ctx context.Context, userID uint64) (*Matrix, error) {
	if m, ok := s.cache.get(userID); ok {
		return m, nil
	}

	gen := s.cache.generation()

	var (
		catalog   []models.Permission
		held      []models.Role
		links     []models.RolePermission
		overrides []models.UserPermission
	)

	err := s.snapshot(ctx, func(tx *gorm.DB) (err error) {
		if err = user.Exists(tx, userID); err != nil {
			return err
		}

		if catalog, err = permission.GetAll(tx); err != nil {
			return fmt.Errorf("failed to load permission matrix: %w", err)
		}

		if held, err = user.Roles(tx, userID); err != nil {
			return fmt.Errorf("failed to load permission matrix: %w", err)
		}

		heldIDs := tx.Model(&models.UserRole{}).Select("role_id").Where("user_id = ?", userID)
		if err = tx.Where("role_id IN (?)", heldIDs).Find(&links).Error; err != nil {
			return fmt.Errorf("failed to load permission matrix: %w", err)
		}

		if overrides, err = user.Overrides(tx, userID); err != nil {
			return fmt.Errorf("failed to load permission matrix: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	m := buildMatrix(userID, catalog, held, links, overrides)
	s.cache.add(gen, userID, m)

	return m, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	decisions, err := s.lookupAll(ctx, userID, permissions)
	if err != nil {
		return false, err
	}

	for _, d := range decisions {
		if d.Effective {
			return true, nil
		}
	}

	return false, nil
}

// HasAllPermissions checks if a user has all of the given permissions.
func (s *Service) HasAllPermissions(ctx context.Context, userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return true, nil
	}

	decisions, err := s.lookupAll(ctx, userID, permissions)
	if err != nil {
		return false, err
	}

	for _, d := range decisions {
		if !d.Effective {
			return false, nil
		}
	}

	return true, nil
}

// GetUserPermissions retrieves the names of all permissions effectively granted to a user.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint64) ([]string, error) {
	m, err := s.BuildEffectiveMatrix(ctx, userID)
	if err != nil {
		return nil, err
	}

	return m.GrantedNames(), nil
}

// lookupAll resolves several permissions from one matrix. Every name must be in the catalog.
func (s *Service) lookupAll(ctx context.Context, userID uint64, names []string) ([]Decision, error) {
	m, err := s.BuildEffectiveMatrix(ctx, userID)
	if err != nil {
		return nil, err
	}

	decisions := make([]Decision, 0, len(names))

	for _, name := range names {
		d, ok := m.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", permission.ErrPermissionNotFound, name)
		}

		decisions = append(decisions, d)
	}

	return decisions, nil
}

// UserRoles returns the roles held by a user.
func (s *Service) UserRoles(ctx context.Context, userID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := s.snapshot(ctx, func(tx *gorm.DB) (err error) {
		if err = user.Exists(tx, userID); err != nil {
			return err
		}

		roles, err = user.Roles(tx, userID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// AuditLog returns the most recent audit entries, newest first.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []models.AuditEntry

	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
