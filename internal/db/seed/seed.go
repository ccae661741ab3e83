// Package seed fills an empty database with the workshop catalog, the shipped
// roles and a bootstrap administrator.
package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/permission"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/role"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/uniuri"
)

// AdminRole is the shipped role holding every permission.
const AdminRole = "admin"

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when a catalog does not parse or validate.
var ErrInvalidCatalog = fmt.Errorf("%w: invalid catalog", controller.ErrValidation)

// Resource lists the actions of one resource.
type Resource struct {
	Resource    string   `yaml:"resource" validate:"required"`
	Description string   `yaml:"description"`
	Actions     []string `yaml:"actions" validate:"required,min=1,dive,required"`
}

// Role is a shipped role. All grants every catalog permission.
type Role struct {
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	All         bool     `yaml:"all"`
	Permissions []string `yaml:"permissions" validate:"required_without=All,dive,required"`
}

// Catalog is the seed document.
type Catalog struct {
	Permissions []Resource `yaml:"permissions" validate:"required,min=1,dive"`
	Roles       []Role     `yaml:"roles" validate:"required,min=1,dive"`
}

// Result reports what a seeding run created.
type Result struct {
	Permissions int
	Roles       int
	// AdminPassword is set when a bootstrap admin was created with a generated password.
	AdminPassword string
	AdminCreated  bool
}

// DefaultCatalog returns the embedded workshop catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a catalog. Role permissions must name
// catalog permissions.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	known := make(map[string]struct{})

	for _, r := range c.Permissions {
		for _, a := range r.Actions {
			known[models.PermissionName(r.Resource, a)] = struct{}{}
		}
	}

	for _, r := range c.Roles {
		for _, p := range r.Permissions {
			if _, ok := known[p]; !ok {
				return nil, fmt.Errorf("%w: role %q references unknown permission %q", ErrInvalidCatalog, r.Name, p)
			}
		}
	}

	return &c, nil
}

// Run seeds the catalog and, on a database without users, the bootstrap admin.
// It is idempotent: existing permissions and roles are kept as they are. A
// permission created by this run is granted to the roles marked all.
func Run(db *gorm.DB, catalog *Catalog, cfg config.Seed) (Result, error) {
	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := seedPermissions(tx, catalog, &res)
		if err != nil {
			return err
		}

		if err = seedRoles(tx, catalog, created, &res); err != nil {
			return err
		}

		return seedAdmin(tx, cfg, &res)
	})
	if err != nil {
		return Result{}, err
	}

	log.Info().Int("permissions", res.Permissions).Int("roles", res.Roles).Bool("admin", res.AdminCreated).
		Msg("Seeding finished")

	if res.AdminPassword != "" {
		log.Warn().Str("username", cfg.AdminUsername).Str("password", res.AdminPassword).
			Msg("Bootstrap admin created with a generated password, change it after the first login")
	}

	return res, nil
}

// seedPermissions creates missing catalog permissions and returns the new ones.
func seedPermissions(tx *gorm.DB, catalog *Catalog, res *Result) ([]models.Permission, error) {
	var created []models.Permission

	for _, r := range catalog.Permissions {
		for _, a := range r.Actions {
			_, err := permission.Get(tx, models.PermissionName(r.Resource, a))
			if err == nil {
				continue
			}

			if !errors.Is(err, permission.ErrPermissionNotFound) {
				return nil, err
			}

			p, err := permission.Create(tx, r.Resource, a, r.Description)
			if err != nil {
				return nil, err
			}

			created = append(created, *p)
			res.Permissions++
		}
	}

	return created, nil
}

func seedRoles(tx *gorm.DB, catalog *Catalog, newPerms []models.Permission, res *Result) error {
	for _, def := range catalog.Roles {
		r, err := role.GetByName(tx, def.Name)

		switch {
		case err == nil:
			if def.All {
				if err = link(tx, r.ID, newPerms); err != nil {
					return err
				}
			}

			continue
		case !errors.Is(err, role.ErrRoleNotFound):
			return err
		}

		if r, err = role.Create(tx, def.Name, def.Description, true); err != nil {
			return err
		}

		res.Roles++

		var perms []models.Permission

		if def.All {
			perms, err = permission.GetAll(tx)
		} else {
			perms, err = permissionsByName(tx, def.Permissions)
		}

		if err != nil {
			return err
		}

		if err = link(tx, r.ID, perms); err != nil {
			return err
		}
	}

	return nil
}

func permissionsByName(tx *gorm.DB, names []string) ([]models.Permission, error) {
	perms := make([]models.Permission, 0, len(names))

	for _, name := range names {
		p, err := permission.Get(tx, name)
		if err != nil {
			return nil, err
		}

		perms = append(perms, *p)
	}

	return perms, nil
}

func link(tx *gorm.DB, roleID uint, perms []models.Permission) error {
	if len(perms) == 0 {
		return nil
	}

	links := make([]models.RolePermission, 0, len(perms))
	for _, p := range perms {
		links = append(links, models.RolePermission{RoleID: roleID, PermissionID: p.ID})
	}

	return controller.TranslateWriteError(tx.Create(&links).Error)
}

func seedAdmin(tx *gorm.DB, cfg config.Seed, res *Result) error {
	count, err := user.Count(tx)
	if err != nil || count > 0 {
		return err
	}

	admin, err := role.GetByName(tx, AdminRole)
	if err != nil {
		return fmt.Errorf("bootstrap admin needs the %q role: %w", AdminRole, err)
	}

	password := cfg.AdminPassword
	if password == "" {
		password = uniuri.NewLen(uniuri.PasswordLen)
		res.AdminPassword = password
	}

	u, err := user.Create(tx, user.NewUser{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: password,
		Active:   true,
	})
	if err != nil {
		return err
	}

	res.AdminCreated = true

	return controller.TranslateWriteError(tx.Create(&models.UserRole{UserID: u.ID, RoleID: admin.ID}).Error)
}
