package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	ColUsers     = "users"
	ColEmployees = "employees"
	ColClients   = "clients"
	ColProjects  = "projects"
	ColDocuments = "documents"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes every collection relies on. The unique
// sequence id indexes turn a concurrent id collision into a failed insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	recent := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}

	indexes := map[string][]mongo.IndexModel{
		ColUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "lastLogin", Value: -1}}},
			recent,
		},
		ColEmployees: {
			{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "jobDetails.department", Value: 1}}},
			recent,
		},
		ColClients: {
			{Keys: bson.D{{Key: "clientId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			recent,
		},
		ColProjects: {
			{Keys: bson.D{{Key: "projectId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "manager", Value: 1}}},
			{Keys: bson.D{{Key: "teamMembers.user", Value: 1}}},
			{Keys: bson.D{{Key: "timeline.milestones.dueDate", Value: 1}}},
			recent,
		},
		ColDocuments: {
			{Keys: bson.D{{Key: "documentId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "isArchived", Value: 1}, {Key: "accessControl.view", Value: 1}}},
			{Keys: bson.D{{Key: "relatedTo.modelType", Value: 1}, {Key: "relatedTo.modelId", Value: 1}}},
			recent,
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
