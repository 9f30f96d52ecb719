package tenant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScopeFor_RegularUserIgnoresOverride(t *testing.T) {
	home := uuid.New()
	other := uuid.New()

	scope := ScopeFor(Principal{UserID: uuid.New(), TenantID: home}, other)

	assert.Equal(t, home, scope.TenantID, "client-supplied override must not move a regular user")
	assert.False(t, scope.AllTenants)
	assert.False(t, scope.SuperAdmin)
}

func TestScopeFor_SuperAdminWithTargetIsPinnedToIt(t *testing.T) {
	home := uuid.New()
	target := uuid.New()

	scope := ScopeFor(Principal{UserID: uuid.New(), TenantID: home, IsSuperAdmin: true}, target)

	assert.Equal(t, target, scope.TenantID)
	assert.False(t, scope.AllTenants)
	assert.True(t, scope.SuperAdmin)
}

func TestScopeFor_SuperAdminWithoutTargetSeesAllTenants(t *testing.T) {
	scope := ScopeFor(Principal{UserID: uuid.New(), TenantID: uuid.New(), IsSuperAdmin: true}, uuid.Nil)

	assert.True(t, scope.AllTenants)
}

func TestOwns(t *testing.T) {
	mine := uuid.New()
	theirs := uuid.New()

	scoped := Scope{TenantID: mine}
	assert.True(t, scoped.Owns(mine))
	assert.False(t, scoped.Owns(theirs))

	unscoped := Scope{AllTenants: true}
	assert.True(t, unscoped.Owns(mine))
	assert.True(t, unscoped.Owns(theirs))
}
