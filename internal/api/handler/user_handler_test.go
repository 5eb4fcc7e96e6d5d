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

type stubUserService struct {
	ports.UserService
	listFn          func(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*domain.User], error)
	updateProfileFn func(ctx context.Context, actor domain.Actor, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, actor domain.Actor, id string) error
}

func (s *stubUserService) List(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*domain.User], error) {
	return s.listFn(ctx, actor, p)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, actor domain.Actor, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, actor, in)
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func TestUserHandler_List_Envelope(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, actor domain.Actor, p ports.ListParams) (*domain.PageResult[*domain.User], error) {
			if p.Filters["role"] != "hr" || p.Search != "ann" {
				t.Fatalf("unexpected params %+v", p)
			}
			users := []*domain.User{{ID: "u-1"}, {ID: "u-2"}}
			return domain.NewPageResult(users, 12, p.Page), nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(http.MethodGet, "/api/users?role=hr&search=ann&page=2&limit=10", "")
	withActor(c, "admin-1", domain.RoleAdmin)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Items       []map[string]any `json:"items"`
		TotalPages  int              `json:"totalPages"`
		CurrentPage int              `json:"currentPage"`
		Total       int64            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Items) != 2 || resp.TotalPages != 2 || resp.CurrentPage != 2 || resp.Total != 12 {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestUserHandler_UpdateProfile_IgnoresRoleAndStatus(t *testing.T) {
	stub := &stubUserService{
		updateProfileFn: func(ctx context.Context, actor domain.Actor, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Role != nil || in.IsActive != nil {
				t.Fatalf("role and isActive must be dropped, got %+v", in)
			}
			if in.Phone == nil || *in.Phone != "555-0100" {
				t.Fatalf("expected phone to pass through, got %+v", in.Phone)
			}
			return &domain.User{ID: actor.UserID}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(http.MethodPut, "/api/users/profile/me", `{"phone":"555-0100","role":"admin","isActive":false}`)
	withActor(c, "u-3", domain.RoleEmployee)

	if err := handler.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, actor domain.Actor, id string) error {
			if id != actor.UserID {
				t.Fatalf("unexpected id %s", id)
			}
			return domain.ErrSelfDelete
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonContext(http.MethodDelete, "/api/users/admin-1", "")
	c.SetParamNames("id")
	c.SetParamValues("admin-1")
	withActor(c, "admin-1", domain.RoleAdmin)

	if err := handler.Delete(c); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
}
