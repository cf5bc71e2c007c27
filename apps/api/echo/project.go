package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/project"
)

type projectApi struct {
	authz *authz.Engine
	svc   *project.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *project.Service) {
	api := projectApi{authz: engine, svc: svc}

	pg := g.Group("/projects", jwt)
	pg.POST("", api.create)
	pg.GET("/class/:classID", api.queryByClass)
}

func (api *projectApi) create(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data project.NewProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionCreateProject, data.ClassID); err != nil {
		return err
	}

	prj, err := api.svc.CreateProject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) queryByClass(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	classID, err := intParam(ctx, "classID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListProjects, classID); err != nil {
		return err
	}

	projects, err := api.svc.QueryProjectsByClass(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}
