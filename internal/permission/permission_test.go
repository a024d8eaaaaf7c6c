package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/internal/apperr"
)

var (
	anon      = Anonymous()
	alice     = Actor{UserID: "u-alice", Username: "alice", Role: RoleUser}
	bob       = Actor{UserID: "u-bob", Username: "bob", Role: RoleUser}
	moderator = Actor{UserID: "u-mod", Username: "mod", Role: RoleModerator}
	admin     = Actor{UserID: "u-admin", Username: "admin", Role: RoleAdmin}
	root      = Actor{UserID: "u-root", Username: "root", Role: RoleUser, IsSuperuser: true}
)

func TestCatalogPolicy(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"anonymous read", anon, ActionRead, true},
		{"anonymous create", anon, ActionCreate, false},
		{"user read", alice, ActionRead, true},
		{"user delete", alice, ActionDelete, false},
		{"moderator update", moderator, ActionUpdate, false},
		{"admin create", admin, ActionCreate, true},
		{"admin delete", admin, ActionDelete, true},
		{"superuser update", root, ActionUpdate, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CatalogPolicy(tc.actor, tc.action, Resource{}))
		})
	}
}

func TestLedgerPolicy(t *testing.T) {
	owned := Resource{AuthorID: alice.UserID}
	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"anonymous read", anon, ActionRead, true},
		{"anonymous delete", anon, ActionDelete, false},
		{"author update", alice, ActionUpdate, true},
		{"author delete", alice, ActionDelete, true},
		{"other user delete", bob, ActionDelete, false},
		{"other user update", bob, ActionUpdate, false},
		{"moderator delete", moderator, ActionDelete, true},
		{"admin update", admin, ActionUpdate, true},
		{"superuser delete", root, ActionDelete, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LedgerPolicy(tc.actor, tc.action, owned))
		})
	}
}

func TestAuthorOrStaff_UnownedResource(t *testing.T) {
	// an empty author never matches an anonymous or user actor
	assert.False(t, AuthorOrStaff(alice, ActionDelete, Resource{}))
	assert.False(t, AuthorOrStaff(anon, ActionDelete, Resource{}))
}

func TestLedgerCreate(t *testing.T) {
	assert.False(t, LedgerCreate(anon, ActionCreate, Resource{}))
	assert.True(t, LedgerCreate(alice, ActionCreate, Resource{}))
}

func TestUserAdminPolicy_NoReadOpen(t *testing.T) {
	assert.False(t, UserAdminPolicy(alice, ActionRead, Resource{}))
	assert.True(t, UserAdminPolicy(admin, ActionRead, Resource{}))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(CatalogPolicy, admin, ActionCreate, Resource{}))

	err := Authorize(CatalogPolicy, anon, ActionCreate, Resource{})
	assert.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)

	err = Authorize(LedgerPolicy, bob, ActionDelete, Resource{AuthorID: alice.UserID})
	assert.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, apperr.CodeForbidden, apperr.As(err).Code)
}

func TestRoleAndMethodHelpers(t *testing.T) {
	assert.True(t, RoleModerator.Valid())
	assert.False(t, Role("owner").Valid())

	assert.Equal(t, ActionRead, ActionForMethod("HEAD"))
	assert.Equal(t, ActionCreate, ActionForMethod("POST"))
	assert.Equal(t, ActionUpdate, ActionForMethod("PATCH"))
	assert.Equal(t, ActionDelete, ActionForMethod("DELETE"))

	assert.True(t, root.IsAdmin())
	assert.True(t, moderator.IsStaff())
	assert.False(t, moderator.IsAdmin())
	assert.False(t, Actor{Role: RoleAdmin}.IsAdmin(), "role without identity is anonymous")
}
