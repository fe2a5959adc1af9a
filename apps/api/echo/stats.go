package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core/student"
)

type statsResponse struct {
	student.Stats
	Distribution []student.LevelCount `json:"distribution"`
}

type statsApi struct {
	svc student.ServiceInterface
}

func registerStatsAPI(g *echo.Group, svc student.ServiceInterface) {
	api := statsApi{svc: svc}
	g.GET("/stats", api.retrieve)
}

func (api *statsApi) retrieve(ctx echo.Context) error {
	stats, err := api.svc.Aggregate()
	if err != nil {
		return errors.Wrap(err, "aggregating stats")
	}
	dist, err := api.svc.Distribution()
	if err != nil {
		return errors.Wrap(err, "computing distribution")
	}
	return ctx.JSON(http.StatusOK, statsResponse{Stats: stats, Distribution: dist})
}
