package service

import (
	"context"
	"errors"
	"testing"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type reportFixture struct {
	users     *stubUserRepo
	employees *stubEmployeeRepo
	clients   *stubClientRepo
	projects  *stubProjectRepo
	documents *stubDocumentRepo
	xlsx, pdf *recordingRenderer
	svc       *ReportService
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		users:     newStubUserRepo(),
		employees: newStubEmployeeRepo(),
		clients:   newStubClientRepo(),
		projects:  newStubProjectRepo(),
		documents: newStubDocumentRepo(),
		xlsx:      &recordingRenderer{ext: "xlsx"},
		pdf:       &recordingRenderer{ext: "pdf"},
	}
	f.svc = NewReportService(ReportDeps{
		Employees: f.employees,
		Clients:   f.clients,
		Projects:  f.projects,
		Documents: f.documents,
		Users:     f.users,
		Stats:     &stubStatsRepo{counts: domain.DashboardCounts{Employees: 3, Projects: 2}},
		Renderers: map[string]ports.ReportRenderer{FormatXLSX: f.xlsx, FormatPDF: f.pdf},
	}, discardLogger)
	return f
}

func TestReportService_Generate_FormatAliases(t *testing.T) {
	f := newReportFixture()
	hr := seedUser(t, f.users, "Helen", domain.RoleHR)
	ctx := context.Background()

	tests := []struct {
		format string
		file   string
	}{
		{"", "employees_report.xlsx"},
		{"excel", "employees_report.xlsx"},
		{"XLSX", "employees_report.xlsx"},
		{"tabular", "employees_report.xlsx"},
		{"pdf", "employees_report.pdf"},
		{"paginated-document", "employees_report.pdf"},
	}
	for _, tt := range tests {
		got, err := f.svc.Generate(ctx, actorOf(hr), "employees", ports.ReportRequest{Format: tt.format})
		if err != nil {
			t.Fatalf("format %q: %v", tt.format, err)
		}
		if got.Name != tt.file {
			t.Fatalf("format %q: expected %s, got %s", tt.format, tt.file, got.Name)
		}
		if len(got.Body) == 0 || got.ContentType == "" {
			t.Fatalf("format %q: empty report", tt.format)
		}
	}
}

func TestReportService_Generate_Errors(t *testing.T) {
	f := newReportFixture()
	hr := seedUser(t, f.users, "Helen", domain.RoleHR)
	cm := seedUser(t, f.users, "Carl", domain.RoleClientManager)
	ctx := context.Background()

	if _, err := f.svc.Generate(ctx, actorOf(hr), "employees", ports.ReportRequest{Format: "csv"}); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := f.svc.Generate(ctx, actorOf(hr), "invoices", ports.ReportRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Generate(ctx, actorOf(cm), "employees", ports.ReportRequest{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestReportService_Generate_EmployeeRows(t *testing.T) {
	f := newReportFixture()
	hr := seedUser(t, f.users, "Helen", domain.RoleHR)
	ctx := context.Background()
	employees := NewEmployeeService(f.employees, f.users, discardLogger)

	for _, name := range []string{"Ana", "Ben"} {
		if _, err := employees.Create(ctx, actorOf(hr), employeeInput(name, domain.EmployeeActive)); err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}
	_, _ = employees.Create(ctx, actorOf(hr), employeeInput("Cid", domain.EmployeeTerminated))

	if _, err := f.svc.Generate(ctx, actorOf(hr), "employees", ports.ReportRequest{Filters: map[string]string{"status": "Active"}}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	table := f.xlsx.table
	if table == nil || table.Title != "Employees Report" {
		t.Fatalf("unexpected table %+v", table)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 active employees, got %d", len(table.Rows))
	}
	if len(table.Columns) != len(table.Rows[0]) {
		t.Fatalf("row width %d does not match %d columns", len(table.Rows[0]), len(table.Columns))
	}
	if table.Rows[0][3] != "helen@company.com" || table.Rows[0][8] != "4200.00" {
		t.Fatalf("unexpected row %v", table.Rows[0])
	}
	if f.employees.lastQuery.Paged() {
		t.Fatalf("reports must not paginate")
	}
}

func TestReportService_Generate_ProjectScope(t *testing.T) {
	f := newReportFixture()
	cm := seedUser(t, f.users, "Carl", domain.RoleClientManager)
	emp := seedUser(t, f.users, "Eve", domain.RoleEmployee)
	ctx := context.Background()

	c := &domain.Client{ClientID: "CLI001", ClientProfile: clientProfile("Acme")}
	c.ApplyDefaults()
	_ = f.clients.Create(ctx, c)
	projects := NewProjectService(f.projects, f.clients, f.users, discardLogger)
	mine, _ := projects.Create(ctx, actorOf(cm), projectProfile("Portal", c.ID))
	_, _ = projects.Create(ctx, actorOf(cm), projectProfile("Billing", c.ID))
	_, _ = projects.AddTeamMember(ctx, actorOf(cm), mine.ID, domain.TeamMember{User: emp.ID, Role: "Dev"})

	if _, err := f.svc.Generate(ctx, actorOf(emp), "projects", ports.ReportRequest{Format: "pdf"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	rows := f.pdf.table.Rows
	if len(rows) != 1 || rows[0][1] != "Portal" || rows[0][2] != "Acme" || rows[0][9] != "1" {
		t.Fatalf("employee must export only their projects, got %v", rows)
	}
}

func TestReportService_Stats(t *testing.T) {
	f := newReportFixture()
	emp := seedUser(t, f.users, "Eve", domain.RoleEmployee)

	stats, err := f.svc.Stats(context.Background(), actorOf(emp))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Totals.Employees != 3 || stats.Totals.Projects != 2 {
		t.Fatalf("unexpected totals %+v", stats.Totals)
	}
	if got := stats.Breakdown["projectsByStatus"]; len(got) != 1 || got[0].Key != "Active" {
		t.Fatalf("unexpected breakdown %+v", stats.Breakdown)
	}

	if _, err := f.svc.Stats(context.Background(), domain.Actor{UserID: "x", Role: "guest"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
