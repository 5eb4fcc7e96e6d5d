package ports

import (
	"context"
	"time"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
)

// Repository is the persistence contract shared by every resource.
// FindByID returns domain.ErrNotFound when no record matches.
type Repository[T any] interface {
	Create(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindByIDs(ctx context.Context, ids []string) ([]*T, error)
	List(ctx context.Context, q ListQuery) ([]*T, int64, error)
	// Update replaces the stored record with item.
	Update(ctx context.Context, item *T) error
}

// Sequencer exposes the human-readable id of the most recently created record.
type Sequencer interface {
	LastSequenceID(ctx context.Context) (string, error)
}

type UserRepository interface {
	Repository[domain.User]
	// FindByEmail returns domain.ErrNotFound for unknown emails.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// RecentLogins lists users by lastLogin descending, skipping excludeID.
	RecentLogins(ctx context.Context, excludeID string, limit int) ([]*domain.User, error)
}

type EmployeeRepository interface {
	Repository[domain.Employee]
	Sequencer
	Delete(ctx context.Context, id string) error
}

type ClientRepository interface {
	Repository[domain.Client]
	Sequencer
	AddContract(ctx context.Context, id string, c domain.Contract) error
	AttachProject(ctx context.Context, clientID, projectID string) error
}

type ProjectRepository interface {
	Repository[domain.Project]
	Sequencer
	// AddTeamMember appends m unless its user is already on the roster, in
	// which case domain.ErrDuplicateMember is returned and nothing changes.
	AddTeamMember(ctx context.Context, id string, m domain.TeamMember) error
	AddMilestone(ctx context.Context, id string, m domain.Milestone) error
	// UpdateProfile overwrites the editable fields of a project and leaves
	// the roster alone. Milestones are only written when replaceMilestones
	// is set.
	UpdateProfile(ctx context.Context, id string, p domain.ProjectProfile, replaceMilestones bool) error
}

type DocumentRepository interface {
	Repository[domain.Document]
	Sequencer
	Archive(ctx context.Context, id string) error
	// FindByFile returns the document whose current or earlier version was
	// stored at fileURL.
	FindByFile(ctx context.Context, fileURL string) (*domain.Document, error)
	// Recent lists non-archived documents within scope, newest first.
	Recent(ctx context.Context, scope policy.Scope, limit int) ([]*domain.Document, error)
}

// StatsRepository computes the aggregates behind the dashboard and the
// report summary.
type StatsRepository interface {
	Counts(ctx context.Context) (domain.DashboardCounts, error)
	ProjectsByStatus(ctx context.Context) ([]domain.CountByKey, error)
	EmployeesByDepartment(ctx context.Context) ([]domain.CountByKey, error)
	ClientsByStatus(ctx context.Context) ([]domain.CountByKey, error)
	DocumentsByCategory(ctx context.Context) ([]domain.CountByKey, error)
	// UpcomingMilestones is limited to projects within scope.
	UpcomingMilestones(ctx context.Context, scope policy.Scope, from, to time.Time, limit int) ([]domain.UpcomingMilestone, error)
}
