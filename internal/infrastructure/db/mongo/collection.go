package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

// collection implements the operations every resource repository shares.
type collection[T any] struct {
	col *mongo.Collection
	// idOf returns a pointer to the record's _id field.
	idOf func(*T) *string
	// search lists the fields matched by free-text search.
	search []string
	// seqField names the human-readable sequence id field, if any.
	seqField string
}

// wrapError maps driver errors onto domain errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func (c *collection[T]) Create(ctx context.Context, item *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := c.idOf(item)
	if *id == "" {
		*id = primitive.NewObjectID().Hex()
	}
	if _, err := c.col.InsertOne(ctx, item); err != nil {
		*id = ""
		return fmt.Errorf("insert into %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return c.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (c *collection[T]) findOne(ctx context.Context, filter bson.D, opts ...*options.FindOneOptions) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out T
	if err := c.col.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		return nil, wrapError(err)
	}
	return &out, nil
}

// FindByIDs returns the records that exist among ids, in no particular order.
func (c *collection[T]) FindByIDs(ctx context.Context, ids []string) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	return c.findMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

func (c *collection[T]) findMany(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := c.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.col.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []*T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.col.Name(), err)
		}
		out = append(out, &item)
	}
	return out, cursor.Err()
}

// List returns one page of matching records and the total match count.
func (c *collection[T]) List(ctx context.Context, q ports.ListQuery) ([]*T, int64, error) {
	filter := buildFilter(q, c.search)

	countCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	total, err := c.col.CountDocuments(countCtx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", c.col.Name(), err)
	}

	items, err := c.findMany(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update replaces the stored record.
func (c *collection[T]) Update(ctx context.Context, item *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: *c.idOf(item)}}, item)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", c.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// updateOne applies update to the record with id. filter adds conditions
// beyond the id match; a miss reports domain.ErrNotFound.
func (c *collection[T]) updateOne(ctx context.Context, id string, filter bson.D, update bson.D) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.UpdateOne(ctx, append(bson.D{{Key: "_id", Value: id}}, filter...), update)
	if err != nil {
		return fmt.Errorf("update %s: %w", c.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LastSequenceID reads the sequence id of the most recently created record.
// An empty collection yields "".
func (c *collection[T]) LastSequenceID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(newestFirst).SetProjection(bson.D{{Key: c.seqField, Value: 1}})
	raw, err := c.col.FindOne(ctx, bson.D{}, opts).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last %s: %w", c.seqField, err)
	}
	v, ok := raw.Lookup(c.seqField).StringValueOK()
	if !ok {
		return "", nil
	}
	return v, nil
}
