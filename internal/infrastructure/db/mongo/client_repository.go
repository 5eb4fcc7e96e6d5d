package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordhub/records-system/internal/core/domain"
)

type ClientRepository struct {
	collection[domain.Client]
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{collection[domain.Client]{
		col:      db.Collection(ColClients),
		idOf:     func(c *domain.Client) *string { return &c.ID },
		search:   []string{"companyName", "contactPerson.firstName", "contactPerson.lastName"},
		seqField: "clientId",
	}}
}

func (r *ClientRepository) AddContract(ctx context.Context, id string, c domain.Contract) error {
	return r.updateOne(ctx, id, nil, bson.D{
		{Key: "$push", Value: bson.D{{Key: "contracts", Value: c}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

// AttachProject records projectID on the client once.
func (r *ClientRepository) AttachProject(ctx context.Context, clientID, projectID string) error {
	return r.updateOne(ctx, clientID, nil, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "projects", Value: projectID}}},
	})
}
