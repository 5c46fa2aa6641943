package handler

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/service"
)

var errInvalidID = apperrors.Wrap(apperrors.ErrInvalidID, "Invalid ID format")

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Invalid("Invalid request body")
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// listQuery holds the query parameters shared by paginated listings.
type listQuery struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Search    string `query:"search"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
}

func (q listQuery) page() service.PageRequest {
	return service.PageRequest{Page: q.Page, Limit: q.Limit}
}

func bindListQuery(c echo.Context) (listQuery, error) {
	var q listQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("search", &q.Search).
		String("sortBy", &q.SortBy).
		String("sortOrder", &q.SortOrder).
		BindError()
	if err != nil {
		return q, apperrors.Invalid("Invalid query parameters")
	}
	return q, nil
}

// optionalBool reads a true/false query parameter, nil when absent.
func optionalBool(c echo.Context, name string) (*bool, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	var v bool
	if err := echo.QueryParamsBinder(c).Bool(name, &v).BindError(); err != nil {
		return nil, apperrors.Invalid("%s must be true or false", name)
	}
	return &v, nil
}

func optionalDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return nil, apperrors.Invalid("%s must be a non-negative number", name)
	}
	return &v, nil
}

func optionalUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errInvalidID
	}
	return &id, nil
}

// splitList accepts both comma-separated and repeated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// emptyIfNil keeps list payloads rendering as [] rather than null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
