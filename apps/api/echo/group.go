package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/group"
)

type groupApi struct {
	svc      *group.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service, validate *validator.Validate) {
	api := groupApi{svc: svc, validate: validate}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create)

	// detail endpoints
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
	gg.GET("/:id/students", api.students)
	gg.POST("/:id/students", api.setStudents)
}

func (api *groupApi) query(ctx echo.Context) error {
	var filter group.QueryFilter
	var err error
	if filter.TeacherID, err = queryID(ctx, "teacher_id"); err != nil {
		return err
	}
	if filter.SubjectID, err = queryID(ctx, "subject_id"); err != nil {
		return err
	}
	filter.Status = ctx.QueryParam("status")
	filter.Clean()

	groups, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id", group.ErrNotFound)
	if err != nil {
		return err
	}
	grp, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id", group.ErrNotFound)
	if err != nil {
		return err
	}
	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id", group.ErrNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Group deleted successfully"})
}

func (api *groupApi) students(ctx echo.Context) error {
	id, err := pathID(ctx, "id", group.ErrNotFound)
	if err != nil {
		return err
	}
	students, err := api.svc.Students(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying group students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *groupApi) setStudents(ctx echo.Context) error {
	id, err := pathID(ctx, "id", group.ErrNotFound)
	if err != nil {
		return err
	}
	var data group.SetStudents
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStudents")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	students, err := api.svc.SetStudents(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "setting group students")
	}
	return ctx.JSON(http.StatusOK, students)
}
