package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// formatAliases maps every accepted request format to a renderer key.
var formatAliases = map[string]string{
	"excel":              FormatXLSX,
	"xlsx":               FormatXLSX,
	"tabular":            FormatXLSX,
	"pdf":                FormatPDF,
	"paginated-document": FormatPDF,
}

var reportFilters = map[string]map[string]string{
	"employees": {
		"department":     "jobDetails.department",
		"status":         "status",
		"employmentType": "jobDetails.employmentType",
	},
	"clients": {
		"status":   "status",
		"industry": "businessDetails.industry",
	},
	"projects": {
		"status":   "status",
		"priority": "priority",
	},
	"documents": {
		"category":  "category",
		"modelType": "relatedTo.modelType",
	},
}

type ReportService struct {
	employees ports.EmployeeRepository
	clients   ports.ClientRepository
	projects  ports.ProjectRepository
	documents ports.DocumentRepository
	users     ports.UserRepository
	stats     ports.StatsRepository
	renderers map[string]ports.ReportRenderer
	logger    zerolog.Logger
}

type ReportDeps struct {
	Employees ports.EmployeeRepository
	Clients   ports.ClientRepository
	Projects  ports.ProjectRepository
	Documents ports.DocumentRepository
	Users     ports.UserRepository
	Stats     ports.StatsRepository
	// Renderers is keyed by FormatXLSX and FormatPDF.
	Renderers map[string]ports.ReportRenderer
}

func NewReportService(deps ReportDeps, logger zerolog.Logger) *ReportService {
	return &ReportService{
		employees: deps.Employees,
		clients:   deps.Clients,
		projects:  deps.Projects,
		documents: deps.Documents,
		users:     deps.Users,
		stats:     deps.Stats,
		renderers: deps.Renderers,
		logger:    logger,
	}
}

// Generate exports the records of report visible to the caller.
func (s *ReportService) Generate(ctx context.Context, actor domain.Actor, report string, req ports.ReportRequest) (*ports.ReportFile, error) {
	res, ok := reportResource(report)
	if !ok {
		return nil, fmt.Errorf("report %q: %w", report, domain.ErrNotFound)
	}
	scope, err := authorize(actor, res, policy.ActionExport)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = "excel"
	}
	renderer, ok := s.renderers[formatAliases[format]]
	if !ok {
		return nil, domain.ErrUnsupportedFormat
	}

	q := listQuery(ports.ListParams{Filters: req.Filters}, reportFilters[report], scope)
	q.Page = domain.Page{}

	var table *ports.Table
	switch res {
	case policy.ResourceEmployee:
		table, err = s.employeeTable(ctx, q)
	case policy.ResourceClient:
		table, err = s.clientTable(ctx, q)
	case policy.ResourceProject:
		table, err = s.projectTable(ctx, q)
	case policy.ResourceDocument:
		q.Filters = withActive(q.Filters)
		table, err = s.documentTable(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	table.GeneratedAt = time.Now().UTC()

	var buf bytes.Buffer
	if err := renderer.Render(&buf, table); err != nil {
		return nil, fmt.Errorf("render %s report: %w", report, err)
	}
	s.logger.Info().Str("report", report).Str("format", renderer.Extension()).Int("rows", len(table.Rows)).Str("by", actor.UserID).Msg("report generated")

	return &ports.ReportFile{
		Name:        report + "_report." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// Stats returns record counts with project and department breakdowns.
func (s *ReportService) Stats(ctx context.Context, actor domain.Actor) (*domain.ReportStats, error) {
	if !actor.Role.Valid() {
		return nil, domain.ErrForbidden
	}
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	byStatus, err := s.stats.ProjectsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("projects by status: %w", err)
	}
	byDept, err := s.stats.EmployeesByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("employees by department: %w", err)
	}
	byClientStatus, err := s.stats.ClientsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("clients by status: %w", err)
	}
	byCategory, err := s.stats.DocumentsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("documents by category: %w", err)
	}
	return &domain.ReportStats{
		Totals: counts,
		Breakdown: map[string][]domain.CountByKey{
			"projectsByStatus":      byStatus,
			"employeesByDepartment": byDept,
			"clientsByStatus":       byClientStatus,
			"documentsByCategory":   byCategory,
		},
	}, nil
}

func reportResource(report string) (policy.Resource, bool) {
	switch report {
	case "employees":
		return policy.ResourceEmployee, true
	case "clients":
		return policy.ResourceClient, true
	case "projects":
		return policy.ResourceProject, true
	case "documents":
		return policy.ResourceDocument, true
	}
	return "", false
}

func (s *ReportService) employeeTable(ctx context.Context, q ports.ListQuery) (*ports.Table, error) {
	items, _, err := s.employees.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.User)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	t := &ports.Table{
		Title: "Employees Report",
		Columns: []ports.Column{
			{Header: "Employee ID", Width: 15}, {Header: "First Name", Width: 15}, {Header: "Last Name", Width: 15},
			{Header: "Email", Width: 25}, {Header: "Department", Width: 20}, {Header: "Position", Width: 20},
			{Header: "Hire Date", Width: 15}, {Header: "Employment Type", Width: 15}, {Header: "Salary", Width: 15},
			{Header: "Status", Width: 15},
		},
	}
	for _, e := range items {
		email := ""
		if u := users[e.User]; u != nil {
			email = u.Email
		}
		t.Rows = append(t.Rows, []string{
			e.EmployeeID, e.PersonalDetails.FirstName, e.PersonalDetails.LastName, email,
			e.JobDetails.Department, e.JobDetails.Position, e.JobDetails.HireDate.String(),
			e.JobDetails.EmploymentType, money(e.JobDetails.Salary), e.Status,
		})
	}
	return t, nil
}

func (s *ReportService) clientTable(ctx context.Context, q ports.ListQuery) (*ports.Table, error) {
	items, _, err := s.clients.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.AssignedManager)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	t := &ports.Table{
		Title: "Clients Report",
		Columns: []ports.Column{
			{Header: "Client ID", Width: 15}, {Header: "Company", Width: 30}, {Header: "Contact", Width: 25},
			{Header: "Email", Width: 25}, {Header: "Phone", Width: 15}, {Header: "Industry", Width: 20},
			{Header: "Manager", Width: 20}, {Header: "Projects", Width: 10}, {Header: "Status", Width: 12},
		},
	}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{
			c.ClientID, c.CompanyName, c.ContactPerson.FirstName + " " + c.ContactPerson.LastName,
			c.ContactDetails.Email, c.ContactDetails.Phone, c.BusinessDetails.Industry,
			summaryName(users[c.AssignedManager]), strconv.Itoa(len(c.Projects)), c.Status,
		})
	}
	return t, nil
}

func (s *ReportService) projectTable(ctx context.Context, q ports.ListQuery) (*ports.Table, error) {
	items, _, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var userIDs, clientIDs []string
	for _, p := range items {
		userIDs = append(userIDs, p.Manager)
		clientIDs = append(clientIDs, p.Client)
	}
	users, err := userSummaries(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}
	companies := map[string]string{}
	if ids := compactIDs(clientIDs); len(ids) > 0 {
		found, err := s.clients.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("populate clients: %w", err)
		}
		for _, c := range found {
			companies[c.ID] = c.CompanyName
		}
	}

	t := &ports.Table{
		Title: "Projects Report",
		Columns: []ports.Column{
			{Header: "Project ID", Width: 15}, {Header: "Title", Width: 30}, {Header: "Client", Width: 20},
			{Header: "Manager", Width: 20}, {Header: "Start Date", Width: 15}, {Header: "End Date", Width: 15},
			{Header: "Status", Width: 15}, {Header: "Priority", Width: 15}, {Header: "Budget", Width: 15},
			{Header: "Team Size", Width: 15},
		},
	}
	for _, p := range items {
		t.Rows = append(t.Rows, []string{
			p.ProjectID, p.Title, companies[p.Client], summaryName(users[p.Manager]),
			p.Timeline.StartDate.String(), p.Timeline.EndDate.String(), p.Status, p.Priority,
			money(p.Budget.Estimated), strconv.Itoa(len(p.TeamMembers)),
		})
	}
	return t, nil
}

func (s *ReportService) documentTable(ctx context.Context, q ports.ListQuery) (*ports.Table, error) {
	items, _, err := s.documents.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.UploadedBy)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	t := &ports.Table{
		Title: "Documents Report",
		Columns: []ports.Column{
			{Header: "Document ID", Width: 15}, {Header: "Title", Width: 30}, {Header: "Category", Width: 15},
			{Header: "Related To", Width: 15}, {Header: "File Name", Width: 30}, {Header: "Size (KB)", Width: 12},
			{Header: "Version", Width: 10}, {Header: "Uploaded By", Width: 20}, {Header: "Uploaded At", Width: 15},
		},
	}
	for _, d := range items {
		t.Rows = append(t.Rows, []string{
			d.DocumentID, d.Title, d.Category, d.RelatedTo.ModelType, d.FileName,
			strconv.FormatFloat(float64(d.FileSize)/1024, 'f', 1, 64), strconv.Itoa(d.Version.Current),
			summaryName(users[d.UploadedBy]), d.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return t, nil
}

func money(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func summaryName(u *domain.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
