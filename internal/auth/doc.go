// Package auth resolves what a workshop user is allowed to do.
//
// Access is decided in two layers over a fixed catalog of resource:action
// permissions:
//   - Roles group permissions. A user holds one or more roles, and the
//     role-derived signal of a permission is true when any held role links it.
//   - Overrides are per-user, per-permission grants or denies. When an override
//     exists it decides, in either direction; otherwise the role signal does.
//
// Anything the engine cannot resolve is an error, never a grant.
//
// # Reads
//
// The Service type answers questions about a user:
//   - IsGranted / Decide: one permission, with the contributing roles and override
//   - BuildEffectiveMatrix: every catalog permission in one pass
//   - HasAnyPermission / HasAllPermissions / GetUserPermissions
//
// # Mutations
//
// SetRolePermissions and SetUserRoles replace a whole set by set difference,
// SetUserPermissionOverride upserts an override and ClearUserPermissionOverride
// removes it. Each mutation, including role, permission and user creation and
// deletion, runs in one transaction together with its audit entry. When the
// matrix cache is enabled it is purged before the mutation returns.
//
// # Middleware
//
// RequirePermission, RequireAnyPermission and RequireAllPermissions protect Fiber
// routes. They read the user from fiber.Locals (LocalsUserID) and answer every
// refusal with the same generic 403.
//
// Example usage:
//
//	authService := auth.NewService(db, auth.WithCache(1024, time.Minute))
//
//	ok, err := authService.IsGranted(ctx, userID, auth.PermServiceOrdersUpdate)
//
//	app.Get("/api/admin/roles",
//	    auth.RequirePermission(authService, auth.PermRolesRead),
//	    handler,
//	)
package auth
