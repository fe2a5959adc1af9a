package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
)

type studentApi struct {
	svc      student.ServiceInterface
	validate *validator.Validate
	logger   core.Logger
}

func registerStudentAPI(g *echo.Group, svc student.ServiceInterface, validate *validator.Validate, logger core.Logger) {
	api := studentApi{
		svc:      svc,
		validate: validate,
		logger:   logger,
	}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/metrics", api.updateMetrics)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := bindQueryFilter(ctx)
	if err := api.validate.Struct(filter); err != nil {
		return err
	}

	students, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	api.flag(ctx, s)
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) updateMetrics(ctx echo.Context) error {
	var data student.UpdateMetrics
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMetrics")
	}

	s, err := api.svc.UpdateMetrics(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.flag(ctx, s)
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.svc.Delete(s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// flag warns about a written Student that needs intervention
func (api *studentApi) flag(ctx echo.Context, s student.Student) {
	if api.logger == nil || !s.NeedsIntervention() {
		return
	}
	api.logger.Warn("student needs intervention", s, map[string]interface{}{
		"method": ctx.Request().Method,
		"path":   ctx.Request().URL.Path,
	})
}
