package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/middleware"
	"github.com/recordhub/records-system/internal/core/domain"
)

// ctxActor extracts the caller injected by the Auth middleware and fails fast
// when the route was mounted without it.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return actor, nil
}
