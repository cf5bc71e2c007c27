package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/classroom"
)

type postApi struct {
	authz *authz.Engine
	svc   *classroom.PostService
}

func registerPostAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *classroom.PostService) {
	api := postApi{authz: engine, svc: svc}

	ag := g.Group("/announcements", jwt)
	ag.POST("", api.createAnnouncement)
	ag.GET("/class/:classID", api.queryAnnouncements)

	dg := g.Group("/documentations", jwt)
	dg.POST("", api.createDocumentation)
	dg.GET("/class/:classID", api.queryDocumentations)
}

func (api *postApi) createAnnouncement(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data classroom.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionCreateAnnouncement, data.ClassID); err != nil {
		return err
	}

	ann, err := api.svc.CreateAnnouncement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *postApi) queryAnnouncements(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	classID, err := intParam(ctx, "classID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListAnnouncements, classID); err != nil {
		return err
	}

	anns, err := api.svc.QueryAnnouncements(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []classroom.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *postApi) createDocumentation(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data classroom.NewDocumentation
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocumentation")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionCreateDocumentation, data.ClassID); err != nil {
		return err
	}

	doc, err := api.svc.CreateDocumentation(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating documentation")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *postApi) queryDocumentations(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	classID, err := intParam(ctx, "classID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListDocumentations, classID); err != nil {
		return err
	}

	docs, err := api.svc.QueryDocumentations(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying documentations")
	}
	if docs == nil {
		docs = []classroom.Documentation{}
	}
	return ctx.JSON(http.StatusOK, docs)
}
