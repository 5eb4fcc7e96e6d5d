package ports

import (
	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
)

// ListQuery is the resource-independent description of a listing.
// A zero Page.Limit means every matching record is returned.
type ListQuery struct {
	Search  string
	Filters map[string]any
	Scope   policy.Scope
	Page    domain.Page
}

// Filter adds an equality condition when value is non-empty.
func (q *ListQuery) Filter(field, value string) {
	if value == "" {
		return
	}
	if q.Filters == nil {
		q.Filters = map[string]any{}
	}
	q.Filters[field] = value
}

// Paged reports whether skip/limit should be applied.
func (q ListQuery) Paged() bool { return q.Page.Limit > 0 }
