package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/classroom"
)

type submissionApi struct {
	authz *authz.Engine
	svc   *classroom.SubmissionService
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *authz.Engine, svc *classroom.SubmissionService) {
	api := submissionApi{authz: engine, svc: svc}

	sg := g.Group("/submissions", jwt)
	sg.POST("", api.submit)
	sg.GET("/task/:taskID", api.queryByTask)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/grade", api.grade)
}

func (api *submissionApi) submit(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data classroom.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionSubmitWork, data.TaskID); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), idn.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting work")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) queryByTask(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	taskID, err := intParam(ctx, "taskID")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionListTaskSubmissions, taskID); err != nil {
		return err
	}

	subs, err := api.svc.QueryByTask(ctx.Request().Context(), taskID)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []classroom.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionViewSubmission, id); err != nil {
		return err
	}

	sub, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding submission by ID")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	idn, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.authz.Authorize(ctx.Request().Context(), idn, authz.ActionGradeSubmission, id); err != nil {
		return err
	}

	var data classroom.GradeSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
