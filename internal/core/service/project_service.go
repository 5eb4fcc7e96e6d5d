package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var projectFilters = map[string]string{
	"status":   "status",
	"priority": "priority",
}

type ProjectService struct {
	projects ports.ProjectRepository
	clients  ports.ClientRepository
	users    ports.UserRepository
	logger   zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{projects: projects, clients: clients, users: users, logger: logger}
}

// List returns a page of projects. Employees see only the projects they
// manage or belong to.
func (s *ProjectService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.ProjectView], error) {
	scope, err := authorize(actor, policy.ResourceProject, policy.ActionList)
	if err != nil {
		return nil, err
	}
	q := listQuery(p, projectFilters, scope)
	items, total, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return domain.NewPageResult(views, total, q.Page), nil
}

func (s *ProjectService) Get(ctx context.Context, actor domain.Actor, id string) (*ports.ProjectView, error) {
	p, err := s.fetch(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

// Create assigns the next PROJ id, makes the creator the manager and links
// the project to its client.
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, in domain.ProjectProfile) (*ports.ProjectView, error) {
	if err := policy.Check(actor, policy.ResourceProject, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	p := &domain.Project{ProjectProfile: in, Manager: actor.UserID}
	if err := s.prepare(ctx, p); err != nil {
		return nil, err
	}

	id, err := nextSequenceID(ctx, s.projects, domain.PrefixProject)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.ProjectID = id
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.projects.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to create project")
		return nil, err
	}
	if err := s.clients.AttachProject(ctx, p.Client, p.ID); err != nil {
		s.logger.Error().Err(err).Str("project_id", id).Str("client", p.Client).Msg("failed to link project to client")
		return nil, fmt.Errorf("link project to client: %w", err)
	}
	s.logger.Info().Str("project_id", p.ProjectID).Str("by", actor.UserID).Msg("project created")
	return s.view(ctx, p)
}

// Update merges patch into the stored project. Employees may only update
// projects they manage. Only the editable fields are written back so a
// concurrent roster or milestone change survives.
func (s *ProjectService) Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.ProjectView, error) {
	p, err := s.fetch(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	previousClient := p.Client
	if err := mergePatch(&p.ProjectProfile, patch); err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, p); err != nil {
		return nil, err
	}
	if err := s.projects.UpdateProfile(ctx, p.ID, p.ProjectProfile, patchHas(patch, "timeline", "milestones")); err != nil {
		return nil, err
	}
	if p.Client != previousClient {
		if err := s.clients.AttachProject(ctx, p.Client, p.ID); err != nil {
			return nil, fmt.Errorf("link project to client: %w", err)
		}
	}
	if p, err = s.projects.FindByID(ctx, p.ID); err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

// AddTeamMember appends a member. A user already on the roster yields
// domain.ErrDuplicateMember and leaves the roster untouched.
func (s *ProjectService) AddTeamMember(ctx context.Context, actor domain.Actor, id string, m domain.TeamMember) (*ports.ProjectView, error) {
	p, err := s.fetch(ctx, actor, id, policy.ActionAddTeam)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(&m); err != nil {
		return nil, err
	}
	if p.HasMember(m.User) {
		return nil, domain.ErrDuplicateMember
	}
	if err := s.projects.AddTeamMember(ctx, p.ID, m); err != nil {
		return nil, err
	}
	p.TeamMembers = append(p.TeamMembers, m)
	s.logger.Info().Str("project_id", p.ProjectID).Str("user", m.User).Msg("team member added")
	return s.view(ctx, p)
}

// Milestones lists the project's milestones by due date.
func (s *ProjectService) Milestones(ctx context.Context, actor domain.Actor, id string) ([]domain.Milestone, error) {
	p, err := s.fetch(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(p.Timeline.Milestones)
	if out == nil {
		out = []domain.Milestone{}
	}
	slices.SortStableFunc(out, func(a, b domain.Milestone) int {
		return a.DueDate.Compare(b.DueDate.Time)
	})
	return out, nil
}

func (s *ProjectService) AddMilestone(ctx context.Context, actor domain.Actor, id string, m domain.Milestone) (*domain.Milestone, error) {
	p, err := s.fetch(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	m.ApplyDefaults()
	if err := validate.Struct(&m); err != nil {
		return nil, err
	}
	m.ID = uuid.NewString()
	if err := s.projects.AddMilestone(ctx, p.ID, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// fetch loads a project and checks act against it.
func (s *ProjectService) fetch(ctx context.Context, actor domain.Actor, id string, act policy.Action) (*domain.Project, error) {
	if !policy.Permits(actor.Role, policy.ResourceProject, act) {
		return nil, domain.ErrForbidden
	}
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := &policy.Target{OwnerID: p.Manager, MemberIDs: p.MemberIDs()}
	if err := policy.Check(actor, policy.ResourceProject, act, target); err != nil {
		return nil, err
	}
	return p, nil
}

// prepare applies defaults, validates and checks the client reference.
func (s *ProjectService) prepare(ctx context.Context, p *domain.Project) error {
	p.ApplyDefaults()
	for i := range p.Timeline.Milestones {
		if p.Timeline.Milestones[i].ID == "" {
			p.Timeline.Milestones[i].ID = uuid.NewString()
		}
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Timeline.EndDate.Before(p.Timeline.StartDate.Time) {
		return domain.NewValidationError("timeline.endDate", "timeline.endDate must not be before timeline.startDate")
	}
	if _, err := s.clients.FindByID(ctx, p.Client); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("client %s: %w", p.Client, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *ProjectService) view(ctx context.Context, p *domain.Project) (*ports.ProjectView, error) {
	views, err := s.views(ctx, []*domain.Project{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ProjectService) views(ctx context.Context, items []*domain.Project) ([]*ports.ProjectView, error) {
	var userIDs, clientIDs []string
	for _, p := range items {
		userIDs = append(userIDs, p.Manager)
		userIDs = append(userIDs, p.MemberIDs()...)
		clientIDs = append(clientIDs, p.Client)
	}
	users, err := userSummaries(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}
	clients := map[string]*domain.ClientSummary{}
	if ids := compactIDs(clientIDs); len(ids) > 0 {
		found, err := s.clients.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("populate clients: %w", err)
		}
		for _, c := range found {
			clients[c.ID] = c.Summary()
		}
	}

	out := make([]*ports.ProjectView, 0, len(items))
	for _, p := range items {
		v := &ports.ProjectView{
			Project:     p,
			Client:      clients[p.Client],
			Manager:     users[p.Manager],
			TeamMembers: make([]ports.TeamMemberView, 0, len(p.TeamMembers)),
		}
		for _, m := range p.TeamMembers {
			v.TeamMembers = append(v.TeamMembers, ports.TeamMemberView{TeamMember: m, User: users[m.User]})
		}
		out = append(out, v)
	}
	return out, nil
}
