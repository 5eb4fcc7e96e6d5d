package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

var errInvalidPayload = echo.NewHTTPError(http.StatusBadRequest, "invalid payload")

// pageResponse is the envelope of every list endpoint.
type pageResponse[T any] struct {
	Items       []T   `json:"items"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Total       int64 `json:"total"`
}

func newPageResponse[T any](r *domain.PageResult[T]) pageResponse[T] {
	return pageResponse[T]{
		Items:       r.Items,
		TotalPages:  r.TotalPages,
		CurrentPage: r.Page,
		Total:       r.Total,
	}
}

// listParams reads page, limit, search and the named filters from the query
// string. Unparsable numbers fall back to the defaults.
func listParams(c echo.Context, filters ...string) ports.ListParams {
	p := ports.ListParams{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   domain.NewPage(queryInt(c, "page"), queryInt(c, "limit")),
	}
	for _, name := range filters {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			if p.Filters == nil {
				p.Filters = make(map[string]string, len(filters))
			}
			p.Filters[name] = v
		}
	}
	return p
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// bindJSON decodes the request body into dst.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidPayload
	}
	return nil
}

// readPatch returns the raw JSON body of an update request.
func readPatch(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errInvalidPayload
	}
	return body, nil
}

type messageResponse struct {
	Message string `json:"message"`
}
