package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/user"
)

type classApi struct {
	authz *authz.Engine
	svc   *classroom.ClassService
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *classroom.ClassService) {
	api := classApi{authz: engine, svc: svc}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create)
	cg.GET("/me", api.queryMine)
	cg.POST("/join", api.join)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/members", api.queryMembers)
	cg.DELETE("/:id", api.destroy)
}

func (api *classApi) create(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionCreateClass, 0); err != nil {
		return err
	}

	var data classroom.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), idn.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) queryMine(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListOwnClasses, 0); err != nil {
		return err
	}

	classes, err := api.svc.QueryByMember(ctx.Request().Context(), idn.ID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []classroom.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) join(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionJoinClass, 0); err != nil {
		return err
	}

	var data classroom.JoinClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClass")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	// joining enrolls with the caller's global role
	cls, err := api.svc.Join(ctx.Request().Context(), user.User{ID: idn.ID, Role: idn.Role}, data)
	if err != nil {
		return errors.Wrap(err, "joining class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionViewClass, id); err != nil {
		return err
	}

	cls, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) queryMembers(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListClassMembers, id); err != nil {
		return err
	}

	members, err := api.svc.Members(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying class members")
	}
	if members == nil {
		members = []classroom.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *classApi) destroy(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionDeleteClass, id); err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}
