package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type stubEmployeeService struct {
	ports.EmployeeService
	listFn   func(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.EmployeeView], error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.EmployeeView, error)
}

func (s *stubEmployeeService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.EmployeeView], error) {
	return s.listFn(ctx, actor, p)
}

func (s *stubEmployeeService) Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.EmployeeView, error) {
	return s.updateFn(ctx, actor, id, patch)
}

type stubProjectService struct {
	ports.ProjectService
	addTeamFn      func(ctx context.Context, actor domain.Actor, id string, m domain.TeamMember) (*ports.ProjectView, error)
	addMilestoneFn func(ctx context.Context, actor domain.Actor, id string, m domain.Milestone) (*domain.Milestone, error)
}

func (s *stubProjectService) AddTeamMember(ctx context.Context, actor domain.Actor, id string, m domain.TeamMember) (*ports.ProjectView, error) {
	return s.addTeamFn(ctx, actor, id, m)
}

func (s *stubProjectService) AddMilestone(ctx context.Context, actor domain.Actor, id string, m domain.Milestone) (*domain.Milestone, error) {
	return s.addMilestoneFn(ctx, actor, id, m)
}

type stubClientService struct {
	ports.ClientService
	addContractFn func(ctx context.Context, actor domain.Actor, id string, c domain.Contract) (*ports.ClientView, error)
}

func (s *stubClientService) AddContract(ctx context.Context, actor domain.Actor, id string, c domain.Contract) (*ports.ClientView, error) {
	return s.addContractFn(ctx, actor, id, c)
}

func TestEmployeeHandler_List_Filters(t *testing.T) {
	stub := &stubEmployeeService{
		listFn: func(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*ports.EmployeeView], error) {
			if actor.Role != domain.RoleHR {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if p.Filters["status"] != "Active" || p.Filters["department"] != "Sales" {
				t.Fatalf("unexpected filters %+v", p.Filters)
			}
			if _, ok := p.Filters["role"]; ok {
				t.Fatal("role is not an employee filter")
			}
			return domain.NewPageResult([]*ports.EmployeeView{}, 0, p.Page), nil
		},
	}
	c, rec := jsonContext(http.MethodGet, "/api/employees?status=Active&department=Sales&role=admin", "")
	withActor(c, "u-hr", domain.RoleHR)

	if err := NewEmployeeHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEmployeeHandler_Update_PassesPatch(t *testing.T) {
	stub := &stubEmployeeService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.EmployeeView, error) {
			if id != "e-1" || string(patch) != `{"position":"Lead"}` {
				t.Fatalf("unexpected update %s %s", id, patch)
			}
			return &ports.EmployeeView{Employee: &domain.Employee{ID: id, EmployeeID: "EMP001"}}, nil
		},
	}
	c, rec := jsonContext(http.MethodPut, "/api/employees/e-1", `{"position":"Lead"}`)
	c.SetParamNames("id")
	c.SetParamValues("e-1")
	withActor(c, "u-admin", domain.RoleAdmin)

	if err := NewEmployeeHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["employeeId"] != "EMP001" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestEmployeeHandler_Update_MalformedBody(t *testing.T) {
	stub := &stubEmployeeService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ports.EmployeeView, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	c, _ := jsonContext(http.MethodPut, "/api/employees/e-1", `{"position":`)
	withActor(c, "u-admin", domain.RoleAdmin)

	if err := NewEmployeeHandler(stub).Update(c); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestEmployeeHandler_List_RequiresActor(t *testing.T) {
	c, _ := jsonContext(http.MethodGet, "/api/employees", "")

	if err := NewEmployeeHandler(&stubEmployeeService{}).List(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProjectHandler_AddTeamMember_Duplicate(t *testing.T) {
	stub := &stubProjectService{
		addTeamFn: func(ctx context.Context, actor domain.Actor, id string, m domain.TeamMember) (*ports.ProjectView, error) {
			if id != "p-1" || m.User != "64b7f0c2a1b2c3d4e5f60718" || m.Role != "Developer" {
				t.Fatalf("unexpected member %s %+v", id, m)
			}
			return nil, domain.ErrDuplicateMember
		},
	}
	c, _ := jsonContext(http.MethodPost, "/api/projects/p-1/team",
		`{"user":"64b7f0c2a1b2c3d4e5f60718","role":"Developer"}`)
	c.SetParamNames("id")
	c.SetParamValues("p-1")
	withActor(c, "u-mgr", domain.RoleClientManager)

	if err := NewProjectHandler(stub).AddTeamMember(c); !errors.Is(err, domain.ErrDuplicateMember) {
		t.Fatalf("expected ErrDuplicateMember, got %v", err)
	}
}

func TestProjectHandler_AddMilestone_Created(t *testing.T) {
	stub := &stubProjectService{
		addMilestoneFn: func(ctx context.Context, actor domain.Actor, id string, m domain.Milestone) (*domain.Milestone, error) {
			if m.Title != "Beta" || m.DueDate.IsZero() {
				t.Fatalf("unexpected milestone %+v", m)
			}
			m.ID = "m-1"
			m.Status = "Pending"
			return &m, nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/api/projects/p-1/milestones", `{"title":"Beta","dueDate":"2026-03-01"}`)
	c.SetParamNames("id")
	c.SetParamValues("p-1")
	withActor(c, "u-admin", domain.RoleAdmin)

	if err := NewProjectHandler(stub).AddMilestone(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestClientHandler_AddContract_Created(t *testing.T) {
	stub := &stubClientService{
		addContractFn: func(ctx context.Context, actor domain.Actor, id string, ct domain.Contract) (*ports.ClientView, error) {
			if id != "c-1" || ct.Title != "Support" || ct.Value == nil || *ct.Value != 1200 {
				t.Fatalf("unexpected contract %s %+v", id, ct)
			}
			return &ports.ClientView{Client: &domain.Client{ID: id, ClientID: "CLI001"}}, nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/api/clients/c-1/contracts",
		`{"title":"Support","startDate":"2026-01-01","endDate":"2026-12-31","value":1200}`)
	c.SetParamNames("id")
	c.SetParamValues("c-1")
	withActor(c, "u-mgr", domain.RoleClientManager)

	if err := NewClientHandler(stub).AddContract(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}
