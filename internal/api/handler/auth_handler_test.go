package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/middleware"
	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.Session, error)
	meFn       func(ctx context.Context, actor domain.Actor) (*domain.User, error)
	logoutFn   func(ctx context.Context, tokenID string, exp time.Time) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.meFn(ctx, actor)
}

func (s *stubAuthService) Logout(ctx context.Context, tokenID string, exp time.Time) error {
	return s.logoutFn(ctx, tokenID, exp)
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, userID string, role domain.Role) echo.Context {
	c.Set(middleware.KeyUserID, userID)
	c.Set(middleware.KeyRole, role)
	return c
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.FirstName != "Alice" || in.Email != "alice@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{
				ID:          "u-1",
				UserProfile: domain.UserProfile{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email},
				Role:        domain.RoleEmployee,
				IsActive:    true,
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/auth/register",
		`{"firstName":"Alice","lastName":"Smith","email":"alice@example.com","password":"secret1"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["email"] != "alice@example.com" || user["role"] != "employee" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/auth/register", `{"email":"bob@example.com"}`)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/auth/register", "not-json")

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTP error, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	exp := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.Session, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.Session{Token: "token123", ExpiresAt: exp, User: &domain.User{ID: "u-1", Role: domain.RoleAdmin}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.ExpiresAt != "2026-01-02T15:04:05Z" || resp.User == nil || resp.User.ID != "u-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com"}`)

	err := handler.Login(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "password" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"wrong"}`)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler must leave the response to the error handler")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(ctx context.Context, actor domain.Actor) (*domain.User, error) {
			if actor.UserID != "u-7" || actor.Role != domain.RoleHR {
				t.Fatalf("unexpected actor: %+v", actor)
			}
			return &domain.User{ID: "u-7", Role: domain.RoleHR}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(http.MethodGet, "/api/auth/me", "")
	withActor(c, "u-7", domain.RoleHR)

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"u-7"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Me_WithoutActor(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(http.MethodGet, "/api/auth/me", "")

	if err := handler.Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_Logout_RevokesPresentedToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	var gotID string
	var gotExp time.Time
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, tokenID string, e time.Time) error {
			gotID, gotExp = tokenID, e
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/auth/logout", "")
	withActor(c, "u-1", domain.RoleAdmin)
	c.Set(middleware.KeyTokenID, "jti-1")
	c.Set(middleware.KeyTokenExp, exp)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "jti-1" || !gotExp.Equal(exp) {
		t.Fatalf("unexpected revocation %s %v", gotID, gotExp)
	}
}
