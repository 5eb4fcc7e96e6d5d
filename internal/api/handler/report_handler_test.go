package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type stubReportService struct {
	generateFn func(ctx context.Context, actor domain.Actor, report string, req ports.ReportRequest) (*ports.ReportFile, error)
}

func (s *stubReportService) Generate(ctx context.Context, actor domain.Actor, report string, req ports.ReportRequest) (*ports.ReportFile, error) {
	return s.generateFn(ctx, actor, report, req)
}

func (s *stubReportService) Stats(ctx context.Context, actor domain.Actor) (*domain.ReportStats, error) {
	return &domain.ReportStats{Totals: domain.DashboardCounts{Employees: 4}}, nil
}

type stubDashboardService struct {
	gotLimit int
}

func (s *stubDashboardService) Stats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func (s *stubDashboardService) Activities(ctx context.Context, actor domain.Actor, limit int) ([]domain.Activity, error) {
	s.gotLimit = limit
	return []domain.Activity{{Type: domain.ActivityLogin}}, nil
}

func TestReportHandler_Generate_SendsAttachment(t *testing.T) {
	stub := &stubReportService{
		generateFn: func(ctx context.Context, actor domain.Actor, report string, req ports.ReportRequest) (*ports.ReportFile, error) {
			if report != "employees" || req.Format != "excel" || req.Filters["department"] != "Sales" {
				t.Fatalf("unexpected request %s %+v", report, req)
			}
			return &ports.ReportFile{Name: "employees-report.xlsx", ContentType: "application/test", Body: []byte("PK")}, nil
		},
	}
	handler := NewReportHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/reports/employees", `{"format":"excel","filters":{"department":"Sales"}}`)
	c.SetParamNames("report")
	c.SetParamValues("employees")
	withActor(c, "u-1", domain.RoleHR)

	if err := handler.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "PK" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=employees-report.xlsx" {
		t.Fatalf("unexpected disposition %s", got)
	}
}

func TestReportHandler_Generate_UnsupportedFormat(t *testing.T) {
	stub := &stubReportService{
		generateFn: func(ctx context.Context, actor domain.Actor, report string, req ports.ReportRequest) (*ports.ReportFile, error) {
			return nil, domain.ErrUnsupportedFormat
		},
	}
	handler := NewReportHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/reports/clients", `{"format":"csv"}`)
	withActor(c, "u-1", domain.RoleAdmin)

	if err := handler.Generate(c); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReportHandler_Stats(t *testing.T) {
	handler := NewReportHandler(&stubReportService{})

	c, rec := jsonContext(http.MethodGet, "/api/reports/stats", "")
	withActor(c, "u-1", domain.RoleAdmin)

	if err := handler.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDashboardHandler_Activities_PassesLimit(t *testing.T) {
	stub := &stubDashboardService{}
	handler := NewDashboardHandler(stub)

	c, rec := jsonContext(http.MethodGet, "/api/dashboard/activities?limit=5", "")
	withActor(c, "u-1", domain.RoleEmployee)

	if err := handler.Activities(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.gotLimit != 5 {
		t.Fatalf("expected limit 5, got %d", stub.gotLimit)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
