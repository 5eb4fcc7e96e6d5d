package domain

import "time"

// DashboardStats is the pre-aggregated landing page payload.
type DashboardStats struct {
	Counts             DashboardCounts     `json:"counts"`
	ProjectsByStatus   []CountByKey        `json:"projectsByStatus"`
	EmployeesByDept    []CountByKey        `json:"employeesByDepartment"`
	RecentActivities   []Activity          `json:"recentActivities"`
	UpcomingMilestones []UpcomingMilestone `json:"upcomingMilestones"`
	GeneratedAt        time.Time           `json:"generatedAt"`
}

type DashboardCounts struct {
	Employees int64 `json:"employees"`
	Clients   int64 `json:"clients"`
	Projects  int64 `json:"projects"`
	Documents int64 `json:"documents"`
	Users     int64 `json:"users"`
}

type CountByKey struct {
	Key   string `json:"key"   bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

const (
	ActivityUpload = "document_upload"
	ActivityLogin  = "user_login"
)

// Activity is a single entry of the recent activity feed.
type Activity struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	User        *UserSummary `json:"user"`
	Timestamp   time.Time    `json:"timestamp"`
}

type UpcomingMilestone struct {
	ProjectID    string    `json:"projectId"    bson:"projectId"`
	ProjectTitle string    `json:"projectTitle" bson:"projectTitle"`
	Milestone    Milestone `json:"milestone"    bson:"milestone"`
}

// ReportStats is the counts summary served by the reports area.
type ReportStats struct {
	Totals    DashboardCounts         `json:"totals"`
	Breakdown map[string][]CountByKey `json:"breakdown"`
}
