package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var employeeFilters = map[string]string{
	"status":     "status",
	"department": "jobDetails.department",
}

type EmployeeService struct {
	employees ports.EmployeeRepository
	users     ports.UserRepository
	logger    zerolog.Logger
}

func NewEmployeeService(employees ports.EmployeeRepository, users ports.UserRepository, logger zerolog.Logger) *EmployeeService {
	return &EmployeeService{employees: employees, users: users, logger: logger}
}

// List returns a page of employees. Employees only ever see active records.
func (s *EmployeeService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.EmployeeView], error) {
	scope, err := authorize(actor, policy.ResourceEmployee, policy.ActionList)
	if err != nil {
		return nil, err
	}
	q := listQuery(p, employeeFilters, scope)
	items, total, err := s.employees.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return domain.NewPageResult(views, total, q.Page), nil
}

func (s *EmployeeService) Get(ctx context.Context, actor domain.Actor, id string) (*ports.EmployeeView, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := &policy.Target{OwnerID: e.User, Status: e.Status}
	if err := policy.Check(actor, policy.ResourceEmployee, policy.ActionRead, target); err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

// Create assigns the next EMP id. The user reference defaults to the creator.
func (s *EmployeeService) Create(ctx context.Context, actor domain.Actor, in ports.EmployeeInput) (*ports.EmployeeView, error) {
	if err := policy.Check(actor, policy.ResourceEmployee, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	e := &domain.Employee{User: in.User, EmployeeProfile: in.EmployeeProfile}
	if e.User == "" {
		e.User = actor.UserID
	}
	e.ApplyDefaults()
	if err := validate.Struct(e); err != nil {
		return nil, err
	}

	id, err := nextSequenceID(ctx, s.employees, domain.PrefixEmployee)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e.EmployeeID = id
	e.CreatedAt, e.UpdatedAt = now, now

	if err := s.employees.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("employee_id", id).Msg("failed to create employee")
		return nil, err
	}
	s.logger.Info().Str("employee_id", e.EmployeeID).Str("by", actor.UserID).Msg("employee created")
	return s.view(ctx, e)
}

// Update merges patch into the stored profile and re-validates the result.
func (s *EmployeeService) Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.EmployeeView, error) {
	if err := policy.Check(actor, policy.ResourceEmployee, policy.ActionUpdate, nil); err != nil {
		return nil, err
	}
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mergePatch(&e.EmployeeProfile, patch); err != nil {
		return nil, err
	}
	e.ApplyDefaults()
	if err := validate.Struct(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := s.employees.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

func (s *EmployeeService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := policy.Check(actor, policy.ResourceEmployee, policy.ActionDelete, nil); err != nil {
		return err
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Str("by", actor.UserID).Msg("employee deleted")
	return nil
}

func (s *EmployeeService) view(ctx context.Context, e *domain.Employee) (*ports.EmployeeView, error) {
	views, err := s.views(ctx, []*domain.Employee{e})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *EmployeeService) views(ctx context.Context, items []*domain.Employee) ([]*ports.EmployeeView, error) {
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.User)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*ports.EmployeeView, 0, len(items))
	for _, e := range items {
		out = append(out, &ports.EmployeeView{Employee: e, User: users[e.User]})
	}
	return out, nil
}
