// Package permission holds the role model and the authorization predicates.
//
// Predicates are pure functions of (actor, action, resource) and are combined
// with Any. Nothing here touches a request or the database.
package permission

import "yamdb/internal/apperr"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// IsSafe reports whether the action never modifies state.
func (a Action) IsSafe() bool { return a == ActionRead }

// ActionForMethod maps an HTTP method to an action.
func ActionForMethod(method string) Action {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return ActionRead
	case "POST":
		return ActionCreate
	case "DELETE":
		return ActionDelete
	default:
		return ActionUpdate
	}
}

// Actor is the identity a request acts as. The zero value is anonymous.
type Actor struct {
	UserID      string
	Username    string
	Role        Role
	IsSuperuser bool
}

func Anonymous() Actor { return Actor{} }

func (a Actor) IsAuthenticated() bool { return a.UserID != "" }

// IsAdmin is true for role admin or the superuser flag.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && (a.Role == RoleAdmin || a.IsSuperuser)
}

// IsStaff is true for moderators and admins.
func (a Actor) IsStaff() bool {
	return a.IsAdmin() || (a.IsAuthenticated() && a.Role == RoleModerator)
}

// Resource is the object an action targets. AuthorID is empty for
// collections and for unowned objects.
type Resource struct {
	AuthorID string
}

// Predicate decides a single rule.
type Predicate func(actor Actor, action Action, res Resource) bool

// ReadOpen allows any read.
func ReadOpen(_ Actor, action Action, _ Resource) bool {
	return action.IsSafe()
}

// Authenticated allows any signed-in actor.
func Authenticated(actor Actor, _ Action, _ Resource) bool {
	return actor.IsAuthenticated()
}

// AdminOnly allows admins and superusers.
func AdminOnly(actor Actor, _ Action, _ Resource) bool {
	return actor.IsAdmin()
}

// AuthorOrStaff allows the resource author, moderators, admins and superusers.
func AuthorOrStaff(actor Actor, _ Action, res Resource) bool {
	if !actor.IsAuthenticated() {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	return res.AuthorID != "" && res.AuthorID == actor.UserID
}

// Any combines predicates with logical OR.
func Any(preds ...Predicate) Predicate {
	return func(actor Actor, action Action, res Resource) bool {
		for _, p := range preds {
			if p(actor, action, res) {
				return true
			}
		}
		return false
	}
}

// Policies used by the services.
var (
	CatalogPolicy     = Any(ReadOpen, AdminOnly)
	LedgerPolicy      = Any(ReadOpen, AuthorOrStaff)
	LedgerCreate      = Any(ReadOpen, Authenticated)
	UserAdminPolicy   = Predicate(AdminOnly)
	SelfProfilePolicy = Predicate(Authenticated)
)

// Authorize evaluates policy and returns nil, Unauthorized for anonymous
// actors, or Forbidden for authenticated ones.
func Authorize(policy Predicate, actor Actor, action Action, res Resource) error {
	if policy(actor, action, res) {
		return nil
	}
	if !actor.IsAuthenticated() {
		return apperr.Unauthorized("authentication credentials were not provided")
	}
	return apperr.Forbidden("you do not have permission to perform this action")
}
