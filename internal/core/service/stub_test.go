package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Generic in-memory repository applying the same filters, scopes and
// pagination the Mongo repositories build.
// ---------------------------------------------------------------------------

type memRepo[T any] struct {
	mu        sync.Mutex
	items     []*T
	idOf      func(*T) *string
	createdOf func(*T) time.Time
	seqOf     func(*T) string
	search    []string
	createErr error
	lastQuery ports.ListQuery
}

func clone[T any](item *T) *T {
	raw, err := bson.Marshal(item)
	if err != nil {
		panic(err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func (r *memRepo[T]) Create(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	*r.idOf(item) = primitive.NewObjectID().Hex()
	r.items = append(r.items, clone(item))
	return nil
}

func (r *memRepo[T]) find(id string) (int, bool) {
	for i, it := range r.items {
		if *r.idOf(it) == id {
			return i, true
		}
	}
	return -1, false
}

func (r *memRepo[T]) FindByID(_ context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(r.items[i]), nil
}

func (r *memRepo[T]) FindByIDs(_ context.Context, ids []string) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*T
	for _, id := range ids {
		if i, ok := r.find(id); ok {
			out = append(out, clone(r.items[i]))
		}
	}
	return out, nil
}

func (r *memRepo[T]) Update(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(*r.idOf(item))
	if !ok {
		return domain.ErrNotFound
	}
	r.items[i] = clone(item)
	return nil
}

func (r *memRepo[T]) delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return domain.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// mutate applies fn to the stored record.
func (r *memRepo[T]) mutate(id string, fn func(*T) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return domain.ErrNotFound
	}
	return fn(r.items[i])
}

func (r *memRepo[T]) sorted() []*T {
	out := make([]*T, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := r.createdOf(out[i]), r.createdOf(out[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return *r.idOf(out[i]) > *r.idOf(out[j])
	})
	return out
}

func (r *memRepo[T]) List(_ context.Context, q ports.ListQuery) ([]*T, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q

	var matched []*T
	for _, it := range r.sorted() {
		if r.matches(it, q) {
			matched = append(matched, clone(it))
		}
	}
	total := int64(len(matched))
	if !q.Paged() {
		return matched, total, nil
	}
	skip := int(q.Page.Skip())
	if skip >= len(matched) {
		return []*T{}, total, nil
	}
	end := min(skip+q.Page.Limit, len(matched))
	return matched[skip:end], total, nil
}

func (r *memRepo[T]) LastSequenceID(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return "", nil
	}
	return r.seqOf(r.sorted()[0]), nil
}

func (r *memRepo[T]) matches(item *T, q ports.ListQuery) bool {
	doc := toDoc(item)
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hit := false
		for _, f := range r.search {
			for _, v := range lookup(doc, strings.Split(f, ".")) {
				if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
					hit = true
				}
			}
		}
		if !hit {
			return false
		}
	}
	for f, v := range q.Filters {
		if !hasValue(doc, f, v) {
			return false
		}
	}
	for _, c := range q.Scope.All {
		if !hasValue(doc, c.Field, c.Value) {
			return false
		}
	}
	if len(q.Scope.Any) == 0 {
		return true
	}
	for _, c := range q.Scope.Any {
		if hasValue(doc, c.Field, c.Value) {
			return true
		}
	}
	return false
}

func toDoc(v any) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func hasValue(doc bson.M, field string, want any) bool {
	for _, v := range lookup(doc, strings.Split(field, ".")) {
		if fmt.Sprint(v) == fmt.Sprint(want) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted path, fanning out over arrays the way Mongo does.
func lookup(v any, path []string) []any {
	switch t := v.(type) {
	case bson.A:
		var out []any
		for _, el := range t {
			out = append(out, lookup(el, path)...)
		}
		return out
	case []any:
		return lookup(bson.A(t), path)
	}
	if len(path) == 0 {
		return []any{v}
	}
	switch t := v.(type) {
	case bson.M:
		return lookup(t[path[0]], path[1:])
	case map[string]any:
		return lookup(t[path[0]], path[1:])
	case bson.D:
		return lookup(t.Map()[path[0]], path[1:])
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resource repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	*memRepo[domain.User]
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{&memRepo[domain.User]{
		idOf:      func(u *domain.User) *string { return &u.ID },
		createdOf: func(u *domain.User) time.Time { return u.CreatedAt },
		seqOf:     func(u *domain.User) string { return u.ID },
		search:    []string{"firstName", "lastName", "email"},
	}}
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *domain.User) error { u.PasswordHash = hash; return nil })
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *domain.User) error { u.LastLogin = &at; return nil })
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error { return r.delete(id) }

func (r *stubUserRepo) RecentLogins(_ context.Context, excludeID string, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.items {
		if u.ID != excludeID && u.LastLogin != nil {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastLogin.After(*out[j].LastLogin) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubEmployeeRepo struct {
	*memRepo[domain.Employee]
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{&memRepo[domain.Employee]{
		idOf:      func(e *domain.Employee) *string { return &e.ID },
		createdOf: func(e *domain.Employee) time.Time { return e.CreatedAt },
		seqOf:     func(e *domain.Employee) string { return e.EmployeeID },
		search:    []string{"personalDetails.firstName", "personalDetails.lastName", "employeeId"},
	}}
}

func (r *stubEmployeeRepo) Delete(_ context.Context, id string) error { return r.delete(id) }

type stubClientRepo struct {
	*memRepo[domain.Client]
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{&memRepo[domain.Client]{
		idOf:      func(c *domain.Client) *string { return &c.ID },
		createdOf: func(c *domain.Client) time.Time { return c.CreatedAt },
		seqOf:     func(c *domain.Client) string { return c.ClientID },
		search:    []string{"companyName", "contactPerson.firstName", "contactPerson.lastName"},
	}}
}

func (r *stubClientRepo) AddContract(_ context.Context, id string, c domain.Contract) error {
	return r.mutate(id, func(cl *domain.Client) error { cl.Contracts = append(cl.Contracts, c); return nil })
}

func (r *stubClientRepo) AttachProject(_ context.Context, clientID, projectID string) error {
	return r.mutate(clientID, func(cl *domain.Client) error {
		for _, p := range cl.Projects {
			if p == projectID {
				return nil
			}
		}
		cl.Projects = append(cl.Projects, projectID)
		return nil
	})
}

type stubProjectRepo struct {
	*memRepo[domain.Project]
	// afterFind runs once after the next FindByID, standing in for a
	// concurrent writer.
	afterFind func()
}

func (r *stubProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := r.memRepo.FindByID(ctx, id)
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return p, err
}

func (r *stubProjectRepo) UpdateProfile(_ context.Context, id string, profile domain.ProjectProfile, replaceMilestones bool) error {
	return r.mutate(id, func(p *domain.Project) error {
		milestones := p.Timeline.Milestones
		p.ProjectProfile = profile
		if !replaceMilestones {
			p.Timeline.Milestones = milestones
		}
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{memRepo: &memRepo[domain.Project]{
		idOf:      func(p *domain.Project) *string { return &p.ID },
		createdOf: func(p *domain.Project) time.Time { return p.CreatedAt },
		seqOf:     func(p *domain.Project) string { return p.ProjectID },
		search:    []string{"title", "description"},
	}}
}

func (r *stubProjectRepo) AddTeamMember(_ context.Context, id string, m domain.TeamMember) error {
	return r.mutate(id, func(p *domain.Project) error {
		if p.HasMember(m.User) {
			return domain.ErrDuplicateMember
		}
		p.TeamMembers = append(p.TeamMembers, m)
		return nil
	})
}

func (r *stubProjectRepo) AddMilestone(_ context.Context, id string, m domain.Milestone) error {
	return r.mutate(id, func(p *domain.Project) error {
		p.Timeline.Milestones = append(p.Timeline.Milestones, m)
		return nil
	})
}

type stubDocumentRepo struct {
	*memRepo[domain.Document]
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{&memRepo[domain.Document]{
		idOf:      func(d *domain.Document) *string { return &d.ID },
		createdOf: func(d *domain.Document) time.Time { return d.CreatedAt },
		seqOf:     func(d *domain.Document) string { return d.DocumentID },
		search:    []string{"title", "description", "fileName"},
	}}
}

func (r *stubDocumentRepo) Archive(_ context.Context, id string) error {
	return r.mutate(id, func(d *domain.Document) error { d.IsArchived = true; return nil })
}

func (r *stubDocumentRepo) Recent(_ context.Context, scope policy.Scope, limit int) ([]*domain.Document, error) {
	items, _, err := r.List(context.Background(), ports.ListQuery{
		Filters: map[string]any{"isArchived": false},
		Scope:   scope,
		Page:    domain.Page{Number: 1, Limit: limit},
	})
	return items, err
}

func (r *stubDocumentRepo) FindByFile(_ context.Context, fileURL string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.FileURL == fileURL {
			return clone(d), nil
		}
		for _, h := range d.Version.History {
			if h.FileURL == fileURL {
				return clone(d), nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubFileStorage struct {
	files    map[string][]byte
	storeErr error
	n        int
}

func newStubFileStorage() *stubFileStorage {
	return &stubFileStorage{files: map[string][]byte{}}
}

func (s *stubFileStorage) Store(_ context.Context, up ports.Upload) (domain.StoredFile, error) {
	if s.storeErr != nil {
		return domain.StoredFile{}, s.storeErr
	}
	body, err := io.ReadAll(up.Content)
	if err != nil {
		return domain.StoredFile{}, err
	}
	s.n++
	key := fmt.Sprintf("%s-%d.pdf", up.Field, s.n)
	s.files[key] = body
	return domain.StoredFile{
		FileName:   up.FileName,
		FileURL:    "/uploads/" + key,
		StorageKey: key,
		FileSize:   int64(len(body)),
		FileType:   "pdf",
		MimeType:   "application/pdf",
	}, nil
}

func (s *stubFileStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := s.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

type stubDenylist struct {
	revoked map[string]time.Time
}

func (d *stubDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[id] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := d.revoked[id]
	return ok, nil
}

type stubStatsCache struct {
	stored *domain.DashboardStats
	getErr error
	sets   int
}

func (c *stubStatsCache) Get(context.Context) (*domain.DashboardStats, error) {
	return c.stored, c.getErr
}

func (c *stubStatsCache) Set(_ context.Context, s *domain.DashboardStats) error {
	c.sets++
	c.stored = s
	return nil
}

type stubStatsRepo struct {
	counts    domain.DashboardCounts
	calls     int
	milestone []domain.UpcomingMilestone
	// milestoneScope is the scope of the last UpcomingMilestones call.
	milestoneScope policy.Scope
}

func (s *stubStatsRepo) Counts(context.Context) (domain.DashboardCounts, error) {
	s.calls++
	return s.counts, nil
}
func (s *stubStatsRepo) ProjectsByStatus(context.Context) ([]domain.CountByKey, error) {
	return []domain.CountByKey{{Key: "Active", Count: 2}}, nil
}
func (s *stubStatsRepo) EmployeesByDepartment(context.Context) ([]domain.CountByKey, error) {
	return []domain.CountByKey{{Key: "Engineering", Count: 3}}, nil
}
func (s *stubStatsRepo) ClientsByStatus(context.Context) ([]domain.CountByKey, error) {
	return nil, nil
}
func (s *stubStatsRepo) DocumentsByCategory(context.Context) ([]domain.CountByKey, error) {
	return nil, nil
}
func (s *stubStatsRepo) UpcomingMilestones(_ context.Context, scope policy.Scope, _, _ time.Time, _ int) ([]domain.UpcomingMilestone, error) {
	s.milestoneScope = scope
	return s.milestone, nil
}

// recordingRenderer captures the table it was asked to render.
type recordingRenderer struct {
	ext   string
	table *ports.Table
}

func (r *recordingRenderer) Render(w io.Writer, t *ports.Table) error {
	r.table = t
	_, err := io.WriteString(w, "rendered:"+t.Title)
	return err
}
func (r *recordingRenderer) ContentType() string { return "application/x-" + r.ext }
func (r *recordingRenderer) Extension() string   { return r.ext }

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func actorOf(u *domain.User) domain.Actor {
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func seedUser(t interface{ Fatalf(string, ...any) }, repo *stubUserRepo, first string, role domain.Role) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		UserProfile: domain.UserProfile{FirstName: first, LastName: "Tester", Email: strings.ToLower(first) + "@company.com"},
		Role:        role,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func day(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func ptr[T any](v T) *T { return &v }

func employeeInput(first string, status string) ports.EmployeeInput {
	return ports.EmployeeInput{EmployeeProfile: domain.EmployeeProfile{
		PersonalDetails: domain.PersonalDetails{
			FirstName:     first,
			LastName:      "Doe",
			DateOfBirth:   day(1990, 4, 12),
			Gender:        "Other",
			ContactNumber: "555-0101",
			PersonalEmail: strings.ToLower(first) + "@mail.com",
		},
		JobDetails: domain.JobDetails{
			Department:     "Engineering",
			Position:       "Developer",
			HireDate:       day(2021, 3, 1),
			EmploymentType: "Full-time",
			Salary:         ptr(4200.0),
		},
		Status: status,
	}}
}

func clientProfile(name string) domain.ClientProfile {
	return domain.ClientProfile{
		CompanyName:    name,
		ContactPerson:  domain.ContactPerson{FirstName: "Carla", LastName: "Ruiz"},
		ContactDetails: domain.ContactDetails{Email: "contact@" + strings.ToLower(name) + ".com", Phone: "555-0199"},
	}
}

func projectProfile(title, clientID string) domain.ProjectProfile {
	return domain.ProjectProfile{
		Title:       title,
		Description: "Delivery of " + title,
		Client:      clientID,
		Timeline:    domain.Timeline{StartDate: day(2025, 1, 1), EndDate: day(2025, 12, 31)},
		Budget:      domain.Budget{Estimated: ptr(10000.0)},
	}
}
