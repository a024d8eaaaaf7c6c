package service

import (
	"context"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

// UserInput is a user write; nil fields are not touched.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService interface {
	List(ctx context.Context, actor permission.Actor, search string, page, pageSize int) ([]models.User, int64, error)
	Get(ctx context.Context, actor permission.Actor, username string) (*models.User, error)
	Create(ctx context.Context, actor permission.Actor, in UserInput) (*models.User, error)
	Update(ctx context.Context, actor permission.Actor, username string, in UserInput) (*models.User, error)
	Delete(ctx context.Context, actor permission.Actor, username string) error
	Me(ctx context.Context, actor permission.Actor) (*models.User, error)
	UpdateMe(ctx context.Context, actor permission.Actor, in UserInput) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, actor permission.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	if err := permission.Authorize(permission.UserAdminPolicy, actor, permission.ActionRead, permission.Resource{}); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.users.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "user")
	}
	return list, total, nil
}

func (s *userService) Get(ctx context.Context, actor permission.Actor, username string) (*models.User, error) {
	if err := permission.Authorize(permission.UserAdminPolicy, actor, permission.ActionRead, permission.Resource{}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return u, nil
}

// Create adds a user directly. The user still signs in through the
// confirmation code flow.
func (s *userService) Create(ctx context.Context, actor permission.Actor, in UserInput) (*models.User, error) {
	if err := permission.Authorize(permission.UserAdminPolicy, actor, permission.ActionCreate, permission.Resource{}); err != nil {
		return nil, err
	}

	var fe fieldErrors
	if in.Username == nil {
		fe.add("username", "username is required")
	}
	if in.Email == nil {
		fe.add("email", "email is required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := checkUserInput(in, true); err != nil {
		return nil, err
	}

	u := &models.User{
		Username: *in.Username,
		Email:    strings.TrimSpace(*in.Email),
		Role:     string(permission.RoleUser),
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Role != nil {
		u.Role = *in.Role
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, actor permission.Actor, username string, in UserInput) (*models.User, error) {
	if err := permission.Authorize(permission.UserAdminPolicy, actor, permission.ActionUpdate, permission.Resource{}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return s.apply(ctx, u, in, true)
}

func (s *userService) Delete(ctx context.Context, actor permission.Actor, username string) error {
	if err := permission.Authorize(permission.UserAdminPolicy, actor, permission.ActionDelete, permission.Resource{}); err != nil {
		return err
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return apperr.FromStorage(err, "user")
	}
	return apperr.FromStorage(s.users.Delete(ctx, u.ID), "user")
}

func (s *userService) Me(ctx context.Context, actor permission.Actor) (*models.User, error) {
	if err := permission.Authorize(permission.SelfProfilePolicy, actor, permission.ActionRead, permission.Resource{}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return u, nil
}

// UpdateMe edits the actor's own profile. Role is read-only here and is
// silently ignored.
func (s *userService) UpdateMe(ctx context.Context, actor permission.Actor, in UserInput) (*models.User, error) {
	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	in.Role = nil
	return s.apply(ctx, u, in, false)
}

func (s *userService) apply(ctx context.Context, u *models.User, in UserInput, allowRole bool) (*models.User, error) {
	if err := checkUserInput(in, allowRole); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Username != nil && *in.Username != u.Username {
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if allowRole && in.Role != nil {
		fields["role"] = *in.Role
	}

	if err := s.users.Update(ctx, u.ID, fields); err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	updated, err := s.users.FindByID(ctx, u.ID)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return updated, nil
}

func checkUserInput(in UserInput, allowRole bool) error {
	var fe fieldErrors
	if in.Username != nil {
		checkUsername(&fe, *in.Username)
	}
	if in.Email != nil {
		checkEmail(&fe, strings.TrimSpace(*in.Email))
	}
	if in.FirstName != nil {
		checkPersonField(&fe, "first_name", *in.FirstName)
	}
	if in.LastName != nil {
		checkPersonField(&fe, "last_name", *in.LastName)
	}
	if allowRole && in.Role != nil && !permission.Role(*in.Role).Valid() {
		fe.add("role", "role must be one of user, moderator, admin")
	}
	return fe.err()
}
