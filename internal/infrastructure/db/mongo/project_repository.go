package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordhub/records-system/internal/core/domain"
)

type ProjectRepository struct {
	collection[domain.Project]
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{collection[domain.Project]{
		col:      db.Collection(ColProjects),
		idOf:     func(p *domain.Project) *string { return &p.ID },
		search:   []string{"title", "description"},
		seqField: "projectId",
	}}
}

// AddTeamMember pushes m only when its user is not yet on the roster, so two
// concurrent adds of the same user cannot both succeed.
func (r *ProjectRepository) AddTeamMember(ctx context.Context, id string, m domain.TeamMember) error {
	err := r.updateOne(ctx, id,
		bson.D{{Key: "teamMembers.user", Value: bson.D{{Key: "$ne", Value: m.User}}}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "teamMembers", Value: m}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
	)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	// Distinguish a missing project from a duplicate member.
	if _, ferr := r.FindByID(ctx, id); ferr != nil {
		return ferr
	}
	return domain.ErrDuplicateMember
}

func (r *ProjectRepository) UpdateProfile(ctx context.Context, id string, p domain.ProjectProfile, replaceMilestones bool) error {
	return r.updateOne(ctx, id, nil, profileUpdate(p, replaceMilestones, time.Now().UTC()))
}

// profileUpdate sets the editable project fields. The team roster is never
// written here so concurrent AddTeamMember calls survive.
func profileUpdate(p domain.ProjectProfile, replaceMilestones bool, now time.Time) bson.D {
	set := bson.D{
		{Key: "title", Value: p.Title},
		{Key: "description", Value: p.Description},
		{Key: "client", Value: p.Client},
		{Key: "timeline.startDate", Value: p.Timeline.StartDate},
		{Key: "timeline.endDate", Value: p.Timeline.EndDate},
		{Key: "budget", Value: p.Budget},
		{Key: "status", Value: p.Status},
		{Key: "priority", Value: p.Priority},
		{Key: "tags", Value: p.Tags},
		{Key: "updatedAt", Value: now},
	}
	if replaceMilestones {
		set = append(set, bson.E{Key: "timeline.milestones", Value: p.Timeline.Milestones})
	}
	return bson.D{{Key: "$set", Value: set}}
}

func (r *ProjectRepository) AddMilestone(ctx context.Context, id string, m domain.Milestone) error {
	return r.updateOne(ctx, id, nil, bson.D{
		{Key: "$push", Value: bson.D{{Key: "timeline.milestones", Value: m}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}
