package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/lesson"
)

type (
	enrollmentApi struct {
		svc      *enrollment.Service
		validate *validator.Validate
	}

	attendanceApi struct {
		svc      *enrollment.Service
		lessons  *lesson.Service
		validate *validator.Validate
	}
)

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{svc: svc, validate: validate}

	eg := g.Group("/enrollments", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create)

	// detail endpoints
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service, lessons *lesson.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, lessons: lessons, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.GET("/lessons", api.day)
	ag.GET("/lessons/:id", api.sheet)
	ag.POST("/lessons/:id/add-student", api.addStudent)
	ag.PUT("/lessons/:id/reschedule", api.reschedule)
	ag.PUT("/enrollments/:id", api.mark)
}

// Enrollment handlers

func (api *enrollmentApi) query(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter enrollment.QueryFilter
	if filter.LessonID, err = queryID(ctx, "lesson_id"); err != nil {
		return err
	}
	if filter.StudentID, err = queryID(ctx, "student_id"); err != nil {
		return err
	}
	filter.Status = ctx.QueryParam("status")
	filter.Clean()

	enrollments, err := api.svc.List(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", enrollment.ErrNotFound)
	if err != nil {
		return err
	}
	e, err := api.svc.Get(ctx.Request().Context(), actor, id)
	if err != nil {
		return errors.Wrap(err, "finding enrollment")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", enrollment.ErrNotFound)
	if err != nil {
		return err
	}
	var data enrollment.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.UpdateStatus(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", enrollment.ErrNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), actor, id); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Enrollment deleted successfully"})
}

// Attendance handlers

func (api *attendanceApi) day(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := enrollment.DayFilter{Date: ctx.QueryParam("date")}
	if filter.TeacherID, err = queryID(ctx, "teacher_id"); err != nil {
		return err
	}
	if filter.GroupID, err = queryID(ctx, "group_id"); err != nil {
		return err
	}

	lessons, err := api.svc.Day(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying day lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	sheet, err := api.lessons.Attendance(ctx.Request().Context(), actor, id)
	if err != nil {
		return errors.Wrap(err, "loading attendance sheet")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *attendanceApi) addStudent(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	var data enrollment.AddStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.AddStudentToLesson(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "adding student to lesson")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *attendanceApi) reschedule(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", lesson.ErrNotFound)
	if err != nil {
		return err
	}
	var data lesson.Reschedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reschedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, err := api.lessons.Reschedule(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "rescheduling lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	id, err := pathID(ctx, "id", enrollment.ErrNotFound)
	if err != nil {
		return err
	}
	var data enrollment.MarkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.MarkAttendance(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, e)
}
