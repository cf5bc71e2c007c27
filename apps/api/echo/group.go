package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/project"
)

type groupApi struct {
	authz *authz.Engine
	svc   *project.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *project.Service) {
	api := groupApi{authz: engine, svc: svc}

	gg := g.Group("/groups", jwt)
	gg.POST("", api.create)
	gg.GET("/project/:projectID", api.queryByProject)
	gg.POST("/:id/members", api.addMember)
	gg.DELETE("/:id/members/:userID", api.removeMember)
	gg.PUT("/:id/leader/:userID", api.appointLeader)
}

func (api *groupApi) create(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data project.NewGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionCreateGroup, data.ProjectID); err != nil {
		return err
	}

	grp, err := api.svc.CreateGroup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) queryByProject(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	projectID, err := intParam(ctx, "projectID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListGroups, projectID); err != nil {
		return err
	}

	groups, err := api.svc.QueryGroupsByProject(ctx.Request().Context(), projectID)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []project.GroupDetail{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) addMember(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionManageGroupMembers, id); err != nil {
		return err
	}

	var data project.NewGroupMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroupMember")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	mbr, err := api.svc.AddMember(ctx.Request().Context(), id, data.UserID)
	if err != nil {
		return errors.Wrap(err, "adding group member")
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	userID, err := intParam(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionManageGroupMembers, id); err != nil {
		return err
	}

	if err = api.svc.RemoveMember(ctx.Request().Context(), id, userID); err != nil {
		return errors.Wrap(err, "removing group member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) appointLeader(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	userID, err := intParam(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionAppointGroupLeader, id); err != nil {
		return err
	}

	mbr, err := api.svc.AppointLeader(ctx.Request().Context(), id, userID)
	if err != nil {
		return errors.Wrap(err, "appointing group leader")
	}
	return ctx.JSON(http.StatusOK, mbr)
}
