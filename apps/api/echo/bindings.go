package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/dropwatch/core/student"
)

var (
	searchParam = "search"
	riskParam   = "risk"
)

// bindQueryFilter reads the roster filter from the query string. Only the first value of each param is used.
func bindQueryFilter(ctx echo.Context) student.QueryFilter {
	var filter student.QueryFilter
	data := ctx.QueryParams()
	if len(data) == 0 {
		return filter
	}
	if val, ok := data[searchParam]; ok && len(val) > 0 {
		filter.Search = val[0]
	}
	if val, ok := data[riskParam]; ok && len(val) > 0 {
		filter.Risk = val[0]
	}
	filter.Clean()
	return filter
}
