package domain

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a normalised 1-based pagination request.
type Page struct {
	Number int
	Limit  int
}

// NewPage applies defaults to out-of-range values: page < 1 becomes 1,
// limit < 1 becomes DefaultLimit and limit is capped at MaxLimit.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// Skip is the number of records preceding this page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPageResult wraps items with the derived page counters.
func NewPageResult[T any](items []T, total int64, p Page) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       p.Number,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}
