package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core/risk"
	"github.com/trezcool/dropwatch/core/student"
)

type riskApi struct {
	validate *validator.Validate
}

func registerRiskAPI(g *echo.Group, validate *validator.Validate) {
	api := riskApi{validate: validate}
	g.POST("/risk/score", api.score)
}

// score previews the assessment of raw metrics without touching the roster.
func (api *riskApi) score(ctx echo.Context) error {
	var data student.UpdateMetrics
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMetrics")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, risk.Assess(data.Values()))
}
