package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bajeti/core/budget"
	"github.com/trezcool/bajeti/core/planning"
)

type planningApi struct {
	budgetSvc *budget.Service
	svc       *planning.Service
}

func registerPlanningAPI(g *echo.Group, jwt echo.MiddlewareFunc, budgetSvc *budget.Service, svc *planning.Service) {
	api := planningApi{budgetSvc: budgetSvc, svc: svc}

	// all pipeline records hang off a budget version
	pg := g.Group("/budgets/:id/planning", jwt, api.versionMiddleware)
	pg.POST("/projections", api.project, financeMiddleware())
	pg.GET("/projections", api.getProjections)
	pg.POST("/recalculate", api.recalculate, financeMiddleware())
	pg.GET("/structures", api.getStructures)
	pg.GET("/subject-hours", api.getSubjectHours)
	pg.GET("/requirements", api.getRequirements)
	pg.GET("/gaps", api.getGaps)
	pg.GET("/gaps/by-cycle", api.getGapsByCycle)
}

// versionMiddleware 404s early when the budget version does not exist.
func (api *planningApi) versionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, err := api.budgetSvc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
			return err
		}
		return next(ctx)
	}
}

// Handlers

func (api *planningApi) project(ctx echo.Context) error {
	var data ProjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectRequest")
	}

	set, err := api.svc.Project(ctx.Request().Context(), ctx.Param("id"), data.Cohorts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, set)
}

func (api *planningApi) getProjections(ctx echo.Context) error {
	projections, err := api.svc.Projections(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if projections == nil {
		projections = []planning.Projection{}
	}
	return ctx.JSON(http.StatusOK, projections)
}

func (api *planningApi) recalculate(ctx echo.Context) error {
	result, err := api.svc.Recalculate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *planningApi) getStructures(ctx echo.Context) error {
	structures, err := api.svc.ClassStructures(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if structures == nil {
		structures = []planning.ClassStructure{}
	}
	return ctx.JSON(http.StatusOK, structures)
}

func (api *planningApi) getSubjectHours(ctx echo.Context) error {
	records, err := api.svc.SubjectHours(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if records == nil {
		records = []planning.SubjectHoursRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *planningApi) getRequirements(ctx echo.Context) error {
	requirements, err := api.svc.Requirements(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if requirements == nil {
		requirements = []planning.Requirement{}
	}
	return ctx.JSON(http.StatusOK, requirements)
}

func (api *planningApi) getGaps(ctx echo.Context) error {
	rows, err := api.svc.GapRows(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []planning.GapRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *planningApi) getGapsByCycle(ctx echo.Context) error {
	byCycle, err := api.svc.AllocationsByCycle(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, byCycle)
}

type ProjectRequest struct {
	Cohorts []planning.CohortInput `json:"cohorts"`
}
