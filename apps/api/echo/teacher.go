package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/teacher"
)

type teacherApi struct {
	svc      *teacher.Service
	groups   *group.Service
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service, groups *group.Service, validate *validator.Validate) {
	api := teacherApi{svc: svc, groups: groups, validate: validate}

	tg := g.Group("/teachers", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)

	// detail endpoints
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.GET("/:id/subjects", api.subjects)
	tg.POST("/:id/subjects", api.setSubjects)
	tg.GET("/:id/groups", api.teacherGroups)
}

func (api *teacherApi) query(ctx echo.Context) error {
	teachers, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	t, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Teacher deleted successfully"})
}

func (api *teacherApi) subjects(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	subjects, err := api.svc.Subjects(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying teacher subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *teacherApi) setSubjects(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	var data teacher.SetSubjects
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subjects, err := api.svc.SetSubjects(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "setting teacher subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *teacherApi) teacherGroups(ctx echo.Context) error {
	id, err := pathID(ctx, "id", teacher.ErrNotFound)
	if err != nil {
		return err
	}
	if _, err := api.svc.Get(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	groups, err := api.groups.ListByTeacher(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying teacher groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}
