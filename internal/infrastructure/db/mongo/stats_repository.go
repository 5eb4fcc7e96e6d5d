package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

// StatsRepository computes dashboard aggregates across collections.
type StatsRepository struct {
	db *mongo.Database
}

func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Counts(ctx context.Context) (domain.DashboardCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.DashboardCounts
	queries := []struct {
		col    string
		filter bson.D
		dst    *int64
	}{
		{ColEmployees, bson.D{{Key: "status", Value: domain.EmployeeActive}}, &c.Employees},
		{ColClients, bson.D{{Key: "status", Value: domain.ClientActive}}, &c.Clients},
		{ColProjects, bson.D{}, &c.Projects},
		{ColDocuments, bson.D{{Key: "isArchived", Value: false}}, &c.Documents},
		{ColUsers, bson.D{{Key: "isActive", Value: true}}, &c.Users},
	}
	for _, q := range queries {
		n, err := r.db.Collection(q.col).CountDocuments(ctx, q.filter)
		if err != nil {
			return domain.DashboardCounts{}, fmt.Errorf("count %s: %w", q.col, err)
		}
		*q.dst = n
	}
	return c, nil
}

func (r *StatsRepository) ProjectsByStatus(ctx context.Context) ([]domain.CountByKey, error) {
	return r.countBy(ctx, ColProjects, "$status")
}

func (r *StatsRepository) EmployeesByDepartment(ctx context.Context) ([]domain.CountByKey, error) {
	return r.countBy(ctx, ColEmployees, "$jobDetails.department")
}

func (r *StatsRepository) ClientsByStatus(ctx context.Context) ([]domain.CountByKey, error) {
	return r.countBy(ctx, ColClients, "$status")
}

func (r *StatsRepository) DocumentsByCategory(ctx context.Context) ([]domain.CountByKey, error) {
	return r.countBy(ctx, ColDocuments, "$category")
}

// countBy groups a collection by the given field expression, largest group first.
func (r *StatsRepository) countBy(ctx context.Context, col, field string) ([]domain.CountByKey, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	out := []domain.CountByKey{}
	if err := r.aggregate(ctx, col, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingMilestones lists open milestones of projects within scope due in
// [from, to], soonest first.
func (r *StatsRepository) UpcomingMilestones(ctx context.Context, scope policy.Scope, from, to time.Time, limit int) ([]domain.UpcomingMilestone, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(ports.ListQuery{Scope: scope}, nil)}},
		{{Key: "$unwind", Value: "$timeline.milestones"}},
		{{Key: "$match", Value: bson.D{
			{Key: "timeline.milestones.dueDate", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
			{Key: "timeline.milestones.status", Value: bson.D{{Key: "$in", Value: bson.A{domain.MilestonePending, domain.MilestoneInProgress}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "projectId", Value: "$_id"},
			{Key: "projectTitle", Value: "$title"},
			{Key: "milestone", Value: "$timeline.milestones"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "milestone.dueDate", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	out := []domain.UpcomingMilestone{}
	if err := r.aggregate(ctx, ColProjects, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatsRepository) aggregate(ctx context.Context, col string, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.db.Collection(col).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", col, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s aggregate: %w", col, err)
	}
	return nil
}
