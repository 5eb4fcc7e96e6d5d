package domain

import "time"

const (
	ProjectPlanning  = "Planning"
	ProjectActive    = "Active"
	ProjectOnHold    = "On Hold"
	ProjectCompleted = "Completed"
	ProjectCancelled = "Cancelled"

	PriorityMedium = "Medium"

	MilestonePending    = "Pending"
	MilestoneInProgress = "In Progress"
	MilestoneCompleted  = "Completed"
	MilestoneDelayed    = "Delayed"
)

type Milestone struct {
	ID            string `json:"id"                    bson:"id"`
	Title         string `json:"title"                 bson:"title"   validate:"required"`
	Description   string `json:"description,omitempty" bson:"description,omitempty"`
	DueDate       Date   `json:"dueDate"               bson:"dueDate" validate:"required"`
	Status        string `json:"status"                bson:"status"  validate:"omitempty,oneof=Pending 'In Progress' Completed Delayed"`
	CompletedDate Date   `json:"completedDate"         bson:"completedDate,omitempty"`
}

type Timeline struct {
	StartDate  Date        `json:"startDate"  bson:"startDate" validate:"required"`
	EndDate    Date        `json:"endDate"    bson:"endDate"   validate:"required"`
	Milestones []Milestone `json:"milestones" bson:"milestones" validate:"dive"`
}

type Expense struct {
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Amount      *float64 `json:"amount"                bson:"amount,omitempty" validate:"omitempty,gte=0"`
	Date        Date     `json:"date"                  bson:"date,omitempty"`
	Category    string   `json:"category,omitempty"    bson:"category,omitempty"`
}

type Budget struct {
	Estimated *float64  `json:"estimated" bson:"estimated"        validate:"required,gte=0"`
	Actual    *float64  `json:"actual"    bson:"actual,omitempty" validate:"omitempty,gte=0"`
	Expenses  []Expense `json:"expenses"  bson:"expenses"         validate:"dive"`
}

type TeamMember struct {
	User      string `json:"user"      bson:"user"      validate:"required,mongodb"`
	Role      string `json:"role"      bson:"role"      validate:"required"`
	StartDate Date   `json:"startDate" bson:"startDate,omitempty"`
	EndDate   Date   `json:"endDate"   bson:"endDate,omitempty"`
}

// ProjectProfile is the editable body of a project record.
type ProjectProfile struct {
	Title       string   `json:"title"       bson:"title"       validate:"required,max=200"`
	Description string   `json:"description" bson:"description" validate:"required"`
	Client      string   `json:"client"      bson:"client"      validate:"required,mongodb"`
	Timeline    Timeline `json:"timeline"    bson:"timeline"`
	Budget      Budget   `json:"budget"      bson:"budget"`
	Status      string   `json:"status"      bson:"status"      validate:"omitempty,oneof=Planning Active 'On Hold' Completed Cancelled"`
	Priority    string   `json:"priority"    bson:"priority"    validate:"omitempty,oneof=Low Medium High Critical"`
	Tags        []string `json:"tags"        bson:"tags"`
}

// Project belongs to a client and is run by a manager with a team.
type Project struct {
	ID             string `json:"id"        bson:"_id,omitempty"`
	ProjectID      string `json:"projectId" bson:"projectId"`
	ProjectProfile `bson:",inline"`
	Manager        string       `json:"manager"     bson:"manager"`
	TeamMembers    []TeamMember `json:"teamMembers" bson:"teamMembers"`
	CreatedAt      time.Time    `json:"createdAt"   bson:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"   bson:"updatedAt"`
}

// ApplyDefaults fills schema defaults that the caller left empty.
func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []TeamMember{}
	}
	if p.Timeline.Milestones == nil {
		p.Timeline.Milestones = []Milestone{}
	}
	for i := range p.Timeline.Milestones {
		p.Timeline.Milestones[i].ApplyDefaults()
	}
	if p.Budget.Expenses == nil {
		p.Budget.Expenses = []Expense{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// MemberIDs lists the user ids on the team roster.
func (p *Project) MemberIDs() []string {
	ids := make([]string, 0, len(p.TeamMembers))
	for _, m := range p.TeamMembers {
		ids = append(ids, m.User)
	}
	return ids
}

// HasMember reports whether userID is already on the roster.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.TeamMembers {
		if m.User == userID {
			return true
		}
	}
	return false
}

// ApplyDefaults sets the initial milestone status.
func (m *Milestone) ApplyDefaults() {
	if m.Status == "" {
		m.Status = MilestonePending
	}
}

// Summary is the populated form of a project reference.
func (p *Project) Summary() *ProjectSummary {
	if p == nil {
		return nil
	}
	return &ProjectSummary{ID: p.ID, ProjectID: p.ProjectID, Title: p.Title, Status: p.Status}
}

type ProjectSummary struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Status    string `json:"status"`
}
