package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bajeti/core/budget"
)

type budgetApi struct {
	svc *budget.Service
}

func registerBudgetAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *budget.Service) {
	api := budgetApi{svc: svc}

	bg := g.Group("/budgets", jwt)
	bg.POST("", api.create, financeMiddleware())
	bg.GET("", api.query)

	dg := bg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/submit", api.submit, financeMiddleware())
	dg.POST("/approve", api.approve, adminMiddleware())
	dg.POST("/reopen", api.reopen, financeMiddleware())
	dg.PUT("/statement", api.setStatementLines, financeMiddleware())
	dg.GET("/statement", api.getStatementLines)
	dg.GET("/summary", api.summary)
}

// Handlers

func (api *budgetApi) create(ctx echo.Context) error {
	var data budget.NewVersion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVersion")
	}

	v, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *budgetApi) query(ctx echo.Context) error {
	versions, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying budget versions")
	}
	if versions == nil {
		versions = []budget.Version{}
	}
	return ctx.JSON(http.StatusOK, versions)
}

func (api *budgetApi) retrieve(ctx echo.Context) error {
	v, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *budgetApi) submit(ctx echo.Context) error {
	v, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *budgetApi) approve(ctx echo.Context) error {
	v, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *budgetApi) reopen(ctx echo.Context) error {
	v, err := api.svc.Reopen(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *budgetApi) setStatementLines(ctx echo.Context) error {
	var data StatementRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatementRequest")
	}

	if err := api.svc.SetStatementLines(ctx.Request().Context(), ctx.Param("id"), data.Lines); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *budgetApi) getStatementLines(ctx echo.Context) error {
	lines, err := api.svc.GetStatementLines(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []budget.StatementLine{}
	}
	return ctx.JSON(http.StatusOK, lines)
}

func (api *budgetApi) summary(ctx echo.Context) error {
	summary, err := api.svc.Summarize(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

type StatementRequest struct {
	Lines []budget.StatementLine `json:"lines"`
}
