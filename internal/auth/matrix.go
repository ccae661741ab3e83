package auth

import (
	"slices"

	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

// Decision is the effective status of one permission for one user, with provenance.
type Decision struct {
	PermissionID uint   `json:"permission_id"`
	Permission   string `json:"permission"`
	Resource     string `json:"resource"`
	Action       string `json:"action"`
	// Effective is the final answer: override if present, role signal otherwise.
	Effective bool `json:"effective"`
	// Roles lists every held role that links the permission, even when an override decides.
	Roles []string `json:"roles"`
	// Override is the user-level override, if any.
	Override OverrideSignal `json:"override"`
}

func newDecision(p models.Permission, role RoleDerivedSignal, override OverrideSignal) Decision {
	roles := role.Roles
	if roles == nil {
		roles = []string{}
	}

	return Decision{
		PermissionID: p.ID,
		Permission:   p.Name,
		Resource:     p.Resource,
		Action:       p.Action,
		Effective:    Resolve(role, override),
		Roles:        roles,
		Override:     override,
	}
}

// Matrix is the effective permission matrix of a user: one Decision per catalog permission,
// in catalog order. A Matrix returned by the Service may be shared and must not be modified.
type Matrix struct {
	UserID  uint64     `json:"user_id"`
	Entries []Decision `json:"entries"`

	index map[string]int
}

// ResourceRow groups the decisions of one resource, for resource x action grids.
type ResourceRow struct {
	Resource string     `json:"resource"`
	Actions  []Decision `json:"actions"`
}

// Lookup returns the decision for a permission name.
func (m *Matrix) Lookup(name string) (Decision, bool) {
	i, ok := m.index[name]
	if !ok {
		return Decision{}, false
	}

	return m.Entries[i], true
}

// GrantedNames returns the names of all effectively granted permissions.
func (m *Matrix) GrantedNames() []string {
	names := make([]string, 0, len(m.Entries))

	for _, e := range m.Entries {
		if e.Effective {
			names = append(names, e.Permission)
		}
	}

	return names
}

// Grid groups the entries by resource, keeping catalog order.
func (m *Matrix) Grid() []ResourceRow {
	var rows []ResourceRow

	for _, e := range m.Entries {
		if n := len(rows); n > 0 && rows[n-1].Resource == e.Resource {
			rows[n-1].Actions = append(rows[n-1].Actions, e)
			continue
		}

		rows = append(rows, ResourceRow{Resource: e.Resource, Actions: []Decision{e}})
	}

	return rows
}

// buildMatrix evaluates every catalog permission for a user in one pass.
// links must be the role links of the held roles only; the permission -> contributing
// roles index is built once from them, so the cost is O(links + catalog).
func buildMatrix(
	userID uint64,
	catalog []models.Permission,
	held []models.Role,
	links []models.RolePermission,
	overrides []models.UserPermission,
) *Matrix {
	roleNames := make(map[uint]string, len(held))
	for _, r := range held {
		roleNames[r.ID] = r.Name
	}

	contributors := make(map[uint][]string)

	for _, l := range links {
		name, ok := roleNames[l.RoleID]
		if !ok {
			continue
		}

		contributors[l.PermissionID] = append(contributors[l.PermissionID], name)
	}

	overrideIdx := make(map[uint]OverrideSignal, len(overrides))
	for _, o := range overrides {
		overrideIdx[o.PermissionID] = OverrideOf(o.Granted)
	}

	m := &Matrix{
		UserID:  userID,
		Entries: make([]Decision, 0, len(catalog)),
		index:   make(map[string]int, len(catalog)),
	}

	for _, p := range catalog {
		roles := contributors[p.ID]
		slices.Sort(roles)
		roles = slices.Compact(roles)

		m.index[p.Name] = len(m.Entries)
		m.Entries = append(m.Entries, newDecision(p, RoleDerivedSignal{Roles: roles}, overrideIdx[p.ID]))
	}

	return m
}
