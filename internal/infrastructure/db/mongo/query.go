package mongo

import (
	"regexp"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

// newestFirst is the listing order of every collection.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// buildFilter turns a listing query into a Mongo filter. Search text is
// matched as a case-insensitive substring over searchFields. Equality
// filters and scope conditions are ANDed together.
func buildFilter(q ports.ListQuery, searchFields []string) bson.D {
	var and bson.A

	if q.Search != "" && len(searchFields) > 0 {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, f := range searchFields {
			or = append(or, bson.D{{Key: f, Value: pattern}})
		}
		and = append(and, bson.D{{Key: "$or", Value: or}})
	}

	for _, field := range sortedKeys(q.Filters) {
		and = append(and, bson.D{{Key: field, Value: q.Filters[field]}})
	}

	for _, c := range q.Scope.All {
		and = append(and, condition(c))
	}
	if len(q.Scope.Any) > 0 {
		or := make(bson.A, 0, len(q.Scope.Any))
		for _, c := range q.Scope.Any {
			or = append(or, condition(c))
		}
		and = append(and, bson.D{{Key: "$or", Value: or}})
	}

	if len(and) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "$and", Value: and}}
}

func condition(c policy.Condition) bson.D {
	return bson.D{{Key: c.Field, Value: c.Value}}
}

// findOptions sorts newest first and applies skip/limit for paged queries.
func findOptions(q ports.ListQuery) *options.FindOptions {
	opts := options.Find().SetSort(newestFirst)
	if q.Paged() {
		opts.SetSkip(q.Page.Skip()).SetLimit(int64(q.Page.Limit))
	}
	return opts
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
