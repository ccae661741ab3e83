package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/permission"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/role"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

// Audit actions.
const (
	ActionRolePermissionsSet = "role.permissions.set"
	ActionRoleCreate         = "role.create"
	ActionRoleUpdate         = "role.update"
	ActionRoleDelete         = "role.delete"
	ActionUserRolesSet       = "user.roles.set"
	ActionUserCreate         = "user.create"
	ActionUserDelete         = "user.delete"
	ActionOverrideSet        = "user.override.set"
	ActionOverrideClear      = "user.override.clear"
	ActionPermissionCreate   = "permission.create"
	ActionPermissionDelete   = "permission.delete"
)

// change is what a mutation reports for its audit entry.
type change struct {
	target string
	detail string
}

// mutate runs fn and its audit entry in one transaction. The matrix cache is purged
// after a successful commit, before mutate returns.
func (s *Service) mutate(ctx context.Context, action string, fn func(tx *gorm.DB) (change, error)) error {
	actor := ActorFrom(ctx)

	var c change

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		if c, err = fn(tx); err != nil {
			return err
		}

		return writeAudit(tx, actor, action, c.target, c.detail)
	})
	countMutation(action, err)

	if err != nil {
		log.Debug().Err(err).Str("action", action).Uint64("actor", actor).Msg("Access mutation rejected")
		return err
	}

	s.cache.purge()

	log.Info().Str("action", action).Str("target", c.target).Uint64("actor", actor).Msg(c.detail)

	return nil
}

// lockRole reads a role and, on engines that support it, locks its row until the
// transaction ends so concurrent replacements of the same set serialize.
func lockRole(tx *gorm.DB, id uint) (*models.Role, error) {
	var roles []models.Role

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Limit(1).Find(&roles).Error; err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: id %d", role.ErrRoleNotFound, id)
	}

	return &roles[0], nil
}

func lockUser(tx *gorm.DB, id uint64) (*models.User, error) {
	var users []models.User

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("%w: id %d", user.ErrUserNotFound, id)
	}

	return &users[0], nil
}

// setDiff returns the elements of target missing from current and the elements of
// current missing from target. Both results are sorted and free of duplicates.
func setDiff(current, target []uint) (add, remove []uint) {
	have := make(map[uint]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	want := make(map[uint]struct{}, len(target))
	for _, id := range target {
		want[id] = struct{}{}
	}

	for id := range want {
		if _, ok := have[id]; !ok {
			add = append(add, id)
		}
	}

	for id := range have {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}

	slices.Sort(add)
	slices.Sort(remove)

	return add, remove
}

// SetRolePermissions replaces the permission set of a role with exactly permissionIDs.
// Links present in both the current and the new set are left untouched.
func (s *Service) SetRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return s.mutate(ctx, ActionRolePermissionsSet, func(tx *gorm.DB) (change, error) {
		r, err := lockRole(tx, roleID)
		if err != nil {
			return change{}, err
		}

		if _, err = permission.GetByIDs(tx, permissionIDs); err != nil {
			return change{}, err
		}

		current, err := role.PermissionIDs(tx, roleID)
		if err != nil {
			return change{}, err
		}

		add, remove := setDiff(current, permissionIDs)

		if len(remove) > 0 {
			result := tx.Where("role_id = ? AND permission_id IN ?", roleID, remove).Delete(&models.RolePermission{})
			if result.Error != nil {
				return change{}, result.Error
			}

			if result.RowsAffected != int64(len(remove)) {
				return change{}, ErrSetChanged
			}
		}

		if len(add) > 0 {
			links := make([]models.RolePermission, 0, len(add))
			for _, id := range add {
				links = append(links, models.RolePermission{RoleID: roleID, PermissionID: id})
			}

			if err = tx.Create(&links).Error; err != nil {
				return change{}, controller.TranslateWriteError(err)
			}
		}

		return change{
			target: roleTarget(roleID),
			detail: fmt.Sprintf("permissions of role %q: +%d -%d, added %v, removed %v",
				r.Name, len(add), len(remove), add, remove),
		}, nil
	})
}

// SetUserRoles replaces the role membership of a user. An empty set is rejected
// before anything is written.
func (s *Service) SetUserRoles(ctx context.Context, userID uint64, roleIDs []uint) error {
	if len(roleIDs) == 0 {
		countMutation(ActionUserRolesSet, ErrEmptyRoleSet)
		return ErrEmptyRoleSet
	}

	return s.mutate(ctx, ActionUserRolesSet, func(tx *gorm.DB) (change, error) {
		u, err := lockUser(tx, userID)
		if err != nil {
			return change{}, err
		}

		if _, err = role.GetByIDs(tx, roleIDs); err != nil {
			return change{}, err
		}

		current, err := user.RoleIDs(tx, userID)
		if err != nil {
			return change{}, err
		}

		add, remove := setDiff(current, roleIDs)

		if len(remove) > 0 {
			result := tx.Where("user_id = ? AND role_id IN ?", userID, remove).Delete(&models.UserRole{})
			if result.Error != nil {
				return change{}, result.Error
			}

			if result.RowsAffected != int64(len(remove)) {
				return change{}, ErrSetChanged
			}
		}

		if len(add) > 0 {
			memberships := make([]models.UserRole, 0, len(add))
			for _, id := range add {
				memberships = append(memberships, models.UserRole{UserID: userID, RoleID: id})
			}

			if err = tx.Create(&memberships).Error; err != nil {
				return change{}, controller.TranslateWriteError(err)
			}
		}

		return change{
			target: userTarget(userID),
			detail: fmt.Sprintf("roles of user %q: +%d -%d, added %v, removed %v",
				u.Username, len(add), len(remove), add, remove),
		}, nil
	})
}

// SetUserPermissionOverride creates or replaces the override of a user for one permission.
// Overrides may reference permissions that no role grants.
func (s *Service) SetUserPermissionOverride(ctx context.Context, userID uint64, permissionID uint, granted bool) error {
	return s.mutate(ctx, ActionOverrideSet, func(tx *gorm.DB) (change, error) {
		u, err := user.Get(tx, userID)
		if err != nil {
			return change{}, err
		}

		p, err := permission.GetByID(tx, permissionID)
		if err != nil {
			return change{}, err
		}

		o := models.UserPermission{UserID: userID, PermissionID: permissionID, Granted: granted}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "permission_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"granted", "updated_at"}),
		}).Create(&o).Error
		if err != nil {
			return change{}, controller.TranslateWriteError(err)
		}

		return change{
			target: userTarget(userID),
			detail: fmt.Sprintf("override %s on %q for user %q", OverrideOf(granted), p.Name, u.Username),
		}, nil
	})
}

// ClearUserPermissionOverride removes the override of a user for one permission, so the
// role-derived signal decides again. Clearing a missing override is not an error.
func (s *Service) ClearUserPermissionOverride(ctx context.Context, userID uint64, permissionID uint) error {
	return s.mutate(ctx, ActionOverrideClear, func(tx *gorm.DB) (change, error) {
		u, err := user.Get(tx, userID)
		if err != nil {
			return change{}, err
		}

		p, err := permission.GetByID(tx, permissionID)
		if err != nil {
			return change{}, err
		}

		err = tx.Where("user_id = ? AND permission_id = ?", userID, permissionID).Delete(&models.UserPermission{}).Error
		if err != nil {
			return change{}, err
		}

		return change{
			target: userTarget(userID),
			detail: fmt.Sprintf("override on %q cleared for user %q", p.Name, u.Username),
		}, nil
	})
}

// CreateRole adds a role with the given permissions.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissionIDs []uint) (*models.Role, error) {
	var created *models.Role

	err := s.mutate(ctx, ActionRoleCreate, func(tx *gorm.DB) (change, error) {
		r, err := role.Create(tx, name, description, false)
		if err != nil {
			return change{}, err
		}

		perms, err := permission.GetByIDs(tx, permissionIDs)
		if err != nil {
			return change{}, err
		}

		for _, p := range perms {
			if err = tx.Create(&models.RolePermission{RoleID: r.ID, PermissionID: p.ID}).Error; err != nil {
				return change{}, controller.TranslateWriteError(err)
			}
		}

		created = r

		return change{
			target: roleTarget(r.ID),
			detail: fmt.Sprintf("role %q created with %d permissions", r.Name, len(perms)),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateRole changes the name and description of a role. System roles keep their name.
func (s *Service) UpdateRole(ctx context.Context, roleID uint, name, description string) (*models.Role, error) {
	var updated *models.Role

	err := s.mutate(ctx, ActionRoleUpdate, func(tx *gorm.DB) (change, error) {
		if _, err := lockRole(tx, roleID); err != nil {
			return change{}, err
		}

		r, err := role.Update(tx, roleID, name, description)
		if err != nil {
			return change{}, err
		}

		updated = r

		return change{target: roleTarget(r.ID), detail: fmt.Sprintf("role %q updated", r.Name)}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRole removes a non-system role together with its permission links and
// memberships. A role still held by users is only deleted when confirm is set.
// Users left without any role are denied everything until they get a new one.
func (s *Service) DeleteRole(ctx context.Context, roleID uint, confirm bool) error {
	return s.mutate(ctx, ActionRoleDelete, func(tx *gorm.DB) (change, error) {
		r, err := lockRole(tx, roleID)
		if err != nil {
			return change{}, err
		}

		if r.IsSystem {
			return change{}, fmt.Errorf("%w: %q", role.ErrSystemRole, r.Name)
		}

		holders, err := role.HolderCount(tx, roleID)
		if err != nil {
			return change{}, err
		}

		if holders > 0 && !confirm {
			return change{}, fmt.Errorf("%w: %d users hold %q", ErrConfirmationRequired, holders, r.Name)
		}

		if err = role.Delete(tx, roleID); err != nil {
			return change{}, err
		}

		return change{
			target: roleTarget(roleID),
			detail: fmt.Sprintf("role %q deleted, %d memberships removed", r.Name, holders),
		}, nil
	})
}

// CreatePermission adds resource:action to the catalog.
func (s *Service) CreatePermission(ctx context.Context, resource, action, description string) (*models.Permission, error) {
	var created *models.Permission

	err := s.mutate(ctx, ActionPermissionCreate, func(tx *gorm.DB) (change, error) {
		p, err := permission.Create(tx, resource, action, description)
		if err != nil {
			return change{}, err
		}

		created = p

		return change{target: permissionTarget(p.ID), detail: fmt.Sprintf("permission %q created", p.Name)}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// DeletePermission removes a permission from the catalog. A referenced permission
// is only deleted with cascade, which removes its role links and overrides first.
func (s *Service) DeletePermission(ctx context.Context, permissionID uint, cascade bool) error {
	return s.mutate(ctx, ActionPermissionDelete, func(tx *gorm.DB) (change, error) {
		p, err := permission.GetByID(tx, permissionID)
		if err != nil {
			return change{}, err
		}

		if cascade {
			if err = permission.DeleteReferences(tx, permissionID); err != nil {
				return change{}, err
			}
		}

		if err = permission.Delete(tx, permissionID); err != nil {
			return change{}, err
		}

		return change{target: permissionTarget(permissionID), detail: fmt.Sprintf("permission %q deleted", p.Name)}, nil
	})
}

// CreateUser adds a user holding the given roles. At least one role is required.
func (s *Service) CreateUser(ctx context.Context, in user.NewUser, roleIDs []uint) (*models.User, error) {
	if len(roleIDs) == 0 {
		countMutation(ActionUserCreate, ErrEmptyRoleSet)
		return nil, ErrEmptyRoleSet
	}

	var created *models.User

	err := s.mutate(ctx, ActionUserCreate, func(tx *gorm.DB) (change, error) {
		roles, err := role.GetByIDs(tx, roleIDs)
		if err != nil {
			return change{}, err
		}

		u, err := user.Create(tx, in)
		if err != nil {
			return change{}, err
		}

		for _, r := range roles {
			if err = tx.Create(&models.UserRole{UserID: u.ID, RoleID: r.ID}).Error; err != nil {
				return change{}, controller.TranslateWriteError(err)
			}
		}

		created = u

		return change{
			target: userTarget(u.ID),
			detail: fmt.Sprintf("user %q created with %d roles", u.Username, len(roles)),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// DeleteUser removes a user with its memberships and overrides.
func (s *Service) DeleteUser(ctx context.Context, userID uint64) error {
	if actor := ActorFrom(ctx); actor != 0 && actor == userID {
		err := fmt.Errorf("%w: users cannot delete themselves", controller.ErrValidation)
		countMutation(ActionUserDelete, err)

		return err
	}

	return s.mutate(ctx, ActionUserDelete, func(tx *gorm.DB) (change, error) {
		u, err := lockUser(tx, userID)
		if err != nil {
			return change{}, err
		}

		if err = user.Delete(tx, userID); err != nil {
			return change{}, err
		}

		return change{target: userTarget(userID), detail: fmt.Sprintf("user %q deleted", u.Username)}, nil
	})
}

// IsNotFound reports whether err means a referenced user, role or permission does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, controller.ErrNotFound)
}
