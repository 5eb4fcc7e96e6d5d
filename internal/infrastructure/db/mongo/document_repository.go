package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

type DocumentRepository struct {
	collection[domain.Document]
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{collection[domain.Document]{
		col:      db.Collection(ColDocuments),
		idOf:     func(d *domain.Document) *string { return &d.ID },
		search:   []string{"title", "description", "fileName"},
		seqField: "documentId",
	}}
}

func (r *DocumentRepository) Archive(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, nil, bson.D{{Key: "$set", Value: bson.D{
		{Key: "isArchived", Value: true},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (r *DocumentRepository) Recent(ctx context.Context, scope policy.Scope, limit int) ([]*domain.Document, error) {
	filter := buildFilter(ports.ListQuery{Filters: map[string]any{"isArchived": false}, Scope: scope}, nil)
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	return r.findMany(ctx, filter, opts)
}

// FindByFile matches the current file and the files of earlier versions.
func (r *DocumentRepository) FindByFile(ctx context.Context, fileURL string) (*domain.Document, error) {
	return r.findOne(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "fileUrl", Value: fileURL}},
		bson.D{{Key: "version.history.fileUrl", Value: fileURL}},
	}}})
}
