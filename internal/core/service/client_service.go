package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var clientFilters = map[string]string{"status": "status"}

type ClientService struct {
	clients  ports.ClientRepository
	projects ports.ProjectRepository
	users    ports.UserRepository
	logger   zerolog.Logger
}

func NewClientService(clients ports.ClientRepository, projects ports.ProjectRepository, users ports.UserRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, projects: projects, users: users, logger: logger}
}

func (s *ClientService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.ClientView], error) {
	scope, err := authorize(actor, policy.ResourceClient, policy.ActionList)
	if err != nil {
		return nil, err
	}
	q := listQuery(p, clientFilters, scope)
	items, total, err := s.clients.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return domain.NewPageResult(views, total, q.Page), nil
}

// Get returns the client with its manager and projects populated.
func (s *ClientService) Get(ctx context.Context, actor domain.Actor, id string) (*ports.ClientView, error) {
	if err := policy.Check(actor, policy.ResourceClient, policy.ActionRead, nil); err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// Create assigns the next CLI id. The assigned manager defaults to the creator.
func (s *ClientService) Create(ctx context.Context, actor domain.Actor, in domain.ClientProfile) (*ports.ClientView, error) {
	if err := policy.Check(actor, policy.ResourceClient, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	c := &domain.Client{ClientProfile: in}
	if c.AssignedManager == "" {
		c.AssignedManager = actor.UserID
	}
	c.ApplyDefaults()
	if err := validate.Struct(c); err != nil {
		return nil, err
	}

	id, err := nextSequenceID(ctx, s.clients, domain.PrefixClient)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.ClientID = id
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.clients.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("client_id", id).Msg("failed to create client")
		return nil, err
	}
	s.logger.Info().Str("client_id", c.ClientID).Str("by", actor.UserID).Msg("client created")
	return s.view(ctx, c)
}

func (s *ClientService) Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.ClientView, error) {
	if err := policy.Check(actor, policy.ResourceClient, policy.ActionUpdate, nil); err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mergePatch(&c.ClientProfile, patch); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := validate.Struct(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddContract appends a contract to the client.
func (s *ClientService) AddContract(ctx context.Context, actor domain.Actor, id string, contract domain.Contract) (*ports.ClientView, error) {
	if err := policy.Check(actor, policy.ResourceClient, policy.ActionUpdate, nil); err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == "" {
		contract.Status = domain.ContractDraft
	}
	if err := validate.Struct(&contract); err != nil {
		return nil, err
	}
	if contract.EndDate.Before(contract.StartDate.Time) {
		return nil, domain.NewValidationError("endDate", "endDate must not be before startDate")
	}
	contract.ID = uuid.NewString()

	if err := s.clients.AddContract(ctx, c.ID, contract); err != nil {
		return nil, err
	}
	c.Contracts = append(c.Contracts, contract)
	s.logger.Info().Str("client_id", c.ClientID).Str("contract", contract.Title).Msg("contract added")
	return s.view(ctx, c)
}

func (s *ClientService) view(ctx context.Context, c *domain.Client) (*ports.ClientView, error) {
	views, err := s.views(ctx, []*domain.Client{c})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views populates managers and projects. References that no longer resolve
// are dropped from the view.
func (s *ClientService) views(ctx context.Context, items []*domain.Client) ([]*ports.ClientView, error) {
	managerIDs := make([]string, 0, len(items))
	var projectIDs []string
	for _, c := range items {
		managerIDs = append(managerIDs, c.AssignedManager)
		projectIDs = append(projectIDs, c.Projects...)
	}
	managers, err := userSummaries(ctx, s.users, managerIDs)
	if err != nil {
		return nil, err
	}

	projects := map[string]*domain.ProjectSummary{}
	if len(projectIDs) > 0 {
		found, err := s.projects.FindByIDs(ctx, compactIDs(projectIDs))
		if err != nil {
			return nil, fmt.Errorf("populate projects: %w", err)
		}
		for _, p := range found {
			projects[p.ID] = p.Summary()
		}
	}

	out := make([]*ports.ClientView, 0, len(items))
	for _, c := range items {
		v := &ports.ClientView{Client: c, AssignedManager: managers[c.AssignedManager], Projects: []*domain.ProjectSummary{}}
		for _, id := range c.Projects {
			if p, ok := projects[id]; ok {
				v.Projects = append(v.Projects, p)
			}
		}
		out = append(out, v)
	}
	return out, nil
}
