package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is the resolved tenant visibility of one request. It is derived once
// per request from the authenticated principal and applied to every query on
// tenant-owned tables.
type Scope struct {
	// TenantID is the effective tenant. Ignored when AllTenants is set.
	TenantID uuid.UUID
	// AllTenants is only ever true for a super admin that did not name a
	// target tenant. The unconditional scope is an explicit privilege.
	AllTenants bool
	// SuperAdmin records whether the principal may override its home tenant.
	SuperAdmin bool
	// UserID identifies the principal for audit trails.
	UserID uuid.UUID
}

// Principal is the identity handed in by the credential service. Only its
// tenant fields matter here; authentication itself happens upstream.
type Principal struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	IsSuperAdmin bool
}

// ScopeFor resolves the effective scope for a principal. A client-supplied
// override is honored only for super admins; everyone else is pinned to
// their own tenant no matter what the request claims.
func ScopeFor(p Principal, override uuid.UUID) Scope {
	s := Scope{
		TenantID:   p.TenantID,
		SuperAdmin: p.IsSuperAdmin,
		UserID:     p.UserID,
	}
	if !p.IsSuperAdmin {
		return s
	}
	if override != uuid.Nil {
		s.TenantID = override
		return s
	}
	s.AllTenants = true
	return s
}

// Apply ANDs the scoping predicate into a query on a tenant-owned table.
// An all-tenants scope adds no condition.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	if s.AllTenants {
		return q
	}
	return q.Where("tenant_id = ?", s.TenantID)
}

// ApplyOn is Apply with a table alias, for joined queries where tenant_id
// would otherwise be ambiguous.
func (s Scope) ApplyOn(q *gorm.DB, table string) *gorm.DB {
	if s.AllTenants {
		return q
	}
	return q.Where(table+".tenant_id = ?", s.TenantID)
}

// Owns reports whether a row carrying tenantID is visible in this scope.
// Every join hop (message -> session -> contact) must re-verify ownership
// with this check, not just the root table, so a crafted child id cannot
// reach across tenants.
func (s Scope) Owns(tenantID uuid.UUID) bool {
	if s.AllTenants {
		return true
	}
	return s.TenantID == tenantID
}
