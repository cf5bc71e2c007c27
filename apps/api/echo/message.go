package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/messaging"
)

type messageApi struct {
	authz *authz.Engine
	svc   *messaging.Service
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *messaging.Service) {
	api := messageApi{authz: engine, svc: svc}

	mg := g.Group("/messages", jwt)
	mg.POST("", api.post)
	mg.GET("/class/:classID", api.queryByClass)
	mg.GET("/private", api.queryPrivate)
}

func (api *messageApi) post(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data messaging.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	// the action and its related resource depend on the message kind
	switch data.Type {
	case messaging.KindPublic:
		err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionPostClassMessage, data.ClassID)
	default:
		err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionPostPrivateMessage, 0)
	}
	if err != nil {
		return err
	}

	msg, err := api.svc.Post(ctx.Request().Context(), idn.ID, data)
	if err != nil {
		return errors.Wrap(err, "posting message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) queryByClass(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	classID, err := intParam(ctx, "classID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListClassMessages, classID); err != nil {
		return err
	}

	msgs, err := api.svc.QueryByClass(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying class messages")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) queryPrivate(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListPrivateMessages, 0); err != nil {
		return err
	}

	msgs, err := api.svc.QueryPrivate(ctx.Request().Context(), idn.ID)
	if err != nil {
		return errors.Wrap(err, "querying private messages")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}
