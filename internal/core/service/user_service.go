package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var userFilters = map[string]string{"role": "role"}

type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*domain.User], error) {
	scope, err := authorize(actor, policy.ResourceUser, policy.ActionList)
	if err != nil {
		return nil, err
	}
	q := listQuery(p, userFilters, scope)
	items, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return domain.NewPageResult(items, total, q.Page), nil
}

// Create provisions an account with any role.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	if err := policy.Check(actor, policy.ResourceUser, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.NewValidationError("role", "role must be one of: admin hr client_manager employee")
	}
	user, err := createUser(ctx, s.users, in.RegisterInput, in.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("by", actor.UserID).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.ResourceUser, policy.ActionRead, &policy.Target{OwnerID: user.ID}); err != nil {
		return nil, err
	}
	return user, nil
}

// Update edits profile fields. Only admins may change role or isActive.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.ResourceUser, policy.ActionUpdate, &policy.Target{OwnerID: user.ID}); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if in.Role != nil && *in.Role != user.Role {
			return nil, domain.ErrForbidden
		}
		in.IsActive = nil
	}
	return s.apply(ctx, user, in, true)
}

func (s *UserService) Profile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.users.FindByID(ctx, actor.UserID)
}

// UpdateProfile lets any caller edit their own name and contact details.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	in.Role, in.IsActive = nil, nil
	return s.apply(ctx, user, in, false)
}

func (s *UserService) apply(ctx context.Context, user *domain.User, in ports.UpdateUserInput, admin bool) (*domain.User, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			other, err := s.users.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, domain.ErrUserExists
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("lookup email: %w", err)
			}
		}
		user.Email = email
	}
	setString(&user.FirstName, in.FirstName)
	setString(&user.LastName, in.LastName)
	setString(&user.Department, in.Department)
	setString(&user.Position, in.Position)
	setString(&user.Phone, in.Phone)
	if admin && in.Role != nil {
		user.Role = *in.Role
	}
	if admin && in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := validate.Struct(user); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password of id. Callers other than admins must
// present the current password.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, id string, in ports.ChangePasswordInput) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	own := user.ID == actor.UserID
	if !own && !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := validate.Struct(&in); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return domain.ErrIncorrectPassword
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Str("by", actor.UserID).Msg("password changed")
	return nil
}

// Delete removes an account. References held by other records are left as is.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := policy.Check(actor, policy.ResourceUser, policy.ActionDelete, nil); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("by", actor.UserID).Msg("user deleted")
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
