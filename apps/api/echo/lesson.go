package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/lesson"
)

type lessonApi struct {
	svc      *lesson.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lesson.Service, validate *validator.Validate) {
	api := lessonApi{svc: svc, validate: validate}

	lg := g.Group("/lessons", jwt)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.GET("/week", api.week)
	lg.GET("/stats", api.stats)

	// detail endpoints
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)
}

func (api *lessonApi) query(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter lesson.QueryFilter
	if filter.StartDate, err = queryDate(ctx, "start_date"); err != nil {
		return err
	}
	if filter.EndDate, err = queryDate(ctx, "end_date"); err != nil {
		return err
	}
	if filter.TeacherID, err = queryID(ctx, "teacher_id"); err != nil {
		return err
	}
	if filter.SubjectID, err = queryID(ctx, "subject_id"); err != nil {
		return err
	}
	if filter.GroupID, err = queryID(ctx, "group_id"); err != nil {
		return err
	}
	filter.Status = ctx.QueryParam("status")
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	lessons, err := api.svc.List(ctx.Request().Context(), actor, filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) week(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	lessons, err := api.svc.Week(ctx.Request().Context(), actor, ctx.QueryParam("start_date"))
	if err != nil {
		return errors.Wrap(err, "querying week lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) stats(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "computing lesson stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *lessonApi) create(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	l, err := api.svc.Get(ctx.Request().Context(), actor, id)
	if err != nil {
		return errors.Wrap(err, "finding lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) update(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	var data lesson.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, err := api.svc.Update(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), actor, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Lesson deleted successfully"})
}
