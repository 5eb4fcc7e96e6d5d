package ports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/recordhub/records-system/internal/core/domain"
)

// ListParams is a listing request as received from the transport layer.
// Filters holds raw query parameters; services keep only the ones they know.
type ListParams struct {
	Search  string
	Filters map[string]string
	Page    domain.Page
}

type RegisterInput struct {
	FirstName  string `json:"firstName"  validate:"required,max=50"`
	LastName   string `json:"lastName"   validate:"required,max=50"`
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required,min=6"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
}

type CreateUserInput struct {
	RegisterInput
	Role domain.Role `json:"role" validate:"required,oneof=admin hr client_manager employee"`
}

// UpdateUserInput carries only the fields present in the request.
type UpdateUserInput struct {
	FirstName  *string      `json:"firstName"  validate:"omitempty,max=50"`
	LastName   *string      `json:"lastName"   validate:"omitempty,max=50"`
	Email      *string      `json:"email"      validate:"omitempty,email"`
	Department *string      `json:"department"`
	Position   *string      `json:"position"`
	Phone      *string      `json:"phone"`
	Role       *domain.Role `json:"role"       validate:"omitempty,oneof=admin hr client_manager employee"`
	IsActive   *bool        `json:"isActive"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type UserService interface {
	List(ctx context.Context, actor domain.Actor, p ListParams) (*domain.PageResult[*domain.User], error)
	Create(ctx context.Context, actor domain.Actor, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateUserInput) (*domain.User, error)
	ChangePassword(ctx context.Context, actor domain.Actor, id string, in ChangePasswordInput) error
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Profile(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in UpdateUserInput) (*domain.User, error)
}

// EmployeeView is an employee with its user reference populated.
type EmployeeView struct {
	*domain.Employee
	User *domain.UserSummary `json:"user"`
}

type EmployeeInput struct {
	User string `json:"user" validate:"omitempty,mongodb"`
	domain.EmployeeProfile
}

type EmployeeService interface {
	List(ctx context.Context, actor domain.Actor, p ListParams) (*domain.PageResult[*EmployeeView], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*EmployeeView, error)
	Create(ctx context.Context, actor domain.Actor, in EmployeeInput) (*EmployeeView, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*EmployeeView, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// ClientView is a client with its manager and projects populated.
type ClientView struct {
	*domain.Client
	AssignedManager *domain.UserSummary      `json:"assignedManager"`
	Projects        []*domain.ProjectSummary `json:"projects"`
}

type ClientService interface {
	List(ctx context.Context, actor domain.Actor, p ListParams) (*domain.PageResult[*ClientView], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*ClientView, error)
	Create(ctx context.Context, actor domain.Actor, in domain.ClientProfile) (*ClientView, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ClientView, error)
	AddContract(ctx context.Context, actor domain.Actor, id string, c domain.Contract) (*ClientView, error)
}

type TeamMemberView struct {
	domain.TeamMember
	User *domain.UserSummary `json:"user"`
}

// ProjectView is a project with client, manager and team populated.
type ProjectView struct {
	*domain.Project
	Client      *domain.ClientSummary `json:"client"`
	Manager     *domain.UserSummary   `json:"manager"`
	TeamMembers []TeamMemberView      `json:"teamMembers"`
}

type ProjectService interface {
	List(ctx context.Context, actor domain.Actor, p ListParams) (*domain.PageResult[*ProjectView], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*ProjectView, error)
	Create(ctx context.Context, actor domain.Actor, in domain.ProjectProfile) (*ProjectView, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*ProjectView, error)
	AddTeamMember(ctx context.Context, actor domain.Actor, id string, m domain.TeamMember) (*ProjectView, error)
	Milestones(ctx context.Context, actor domain.Actor, id string) ([]domain.Milestone, error)
	AddMilestone(ctx context.Context, actor domain.Actor, id string, m domain.Milestone) (*domain.Milestone, error)
}

// DocumentView is a document with its uploader populated.
type DocumentView struct {
	*domain.Document
	UploadedBy *domain.UserSummary `json:"uploadedBy"`
}

type DocumentUploadInput struct {
	Metadata domain.DocumentMetadata
	File     Upload
}

type DocumentService interface {
	Upload(ctx context.Context, actor domain.Actor, in DocumentUploadInput) (*DocumentView, error)
	List(ctx context.Context, actor domain.Actor, p ListParams) (*domain.PageResult[*DocumentView], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*DocumentView, error)
	// Download returns the document and an open reader the caller must close.
	Download(ctx context.Context, actor domain.Actor, id string) (*domain.Document, io.ReadCloser, error)
	// OpenFile resolves a stored file name to its document and applies the
	// same view check as Download.
	OpenFile(ctx context.Context, actor domain.Actor, name string) (*domain.Document, io.ReadCloser, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch json.RawMessage) (*DocumentView, error)
	AddVersion(ctx context.Context, actor domain.Actor, id, changes string, file Upload) (*DocumentView, error)
	Archive(ctx context.Context, actor domain.Actor, id string) error
}

type ReportRequest struct {
	Format  string            `json:"format"`
	Filters map[string]string `json:"filters"`
}

// ReportFile is a rendered export ready to be sent as an attachment.
type ReportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Generate(ctx context.Context, actor domain.Actor, report string, req ReportRequest) (*ReportFile, error)
	Stats(ctx context.Context, actor domain.Actor) (*domain.ReportStats, error)
}

type DashboardService interface {
	Stats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error)
	Activities(ctx context.Context, actor domain.Actor, limit int) ([]domain.Activity, error)
}
