package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other` into Orderings. A leading "-" sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pathID parses the :name path parameter. A malformed id cannot match any row.
func pathID(ctx echo.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter; blank means unset.
func queryID(ctx echo.Context, name string) (*int64, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return &id, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(ctx echo.Context, name string) (string, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return "", nil
	}
	if _, err := core.AddDays(val, 0); err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a date formatted as YYYY-MM-DD"})
	}
	return val, nil
}
