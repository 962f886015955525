package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
)

type (
	Deps struct {
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		UserSvc       *user.Service
		TeacherSvc    *teacher.Service
		SubjectSvc    *subject.Service
		GroupSvc      *group.Service
		StudentSvc    *student.Service
		LessonSvc     *lesson.Service
		EnrollmentSvc *enrollment.Service
		PaymentSvc    *payment.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		conf     *core.Config
		shutdown chan os.Signal
		deps     *Deps
		app      *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(conf *core.Config, shutdown chan os.Signal, deps *Deps) Server {
	s := &server{
		conf:     conf,
		shutdown: shutdown,
		deps:     deps,
		app:      echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	s.app.Use(metricsMiddleware)
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.conf.Server.AllowOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	s.app.Use(middleware.BodyLimit(s.conf.Server.BodyLimit))

	g := s.app.Group("/api")
	g.GET("/health", health)

	jwt := middleware.JWTWithConfig(jwtConfig(s.conf))
	d := s.deps

	registerAuthAPI(g, jwt, s.conf, d.UserSvc, d.Validate)
	registerUserAPI(g, jwt, d.UserSvc, d.Validate)
	registerStudentAPI(g, jwt, d.StudentSvc, d.Validate)
	registerTeacherAPI(g, jwt, d.TeacherSvc, d.GroupSvc, d.Validate)
	registerSubjectAPI(g, jwt, d.SubjectSvc, d.Validate)
	registerGroupAPI(g, jwt, d.GroupSvc, d.Validate)
	registerLessonAPI(g, jwt, d.LessonSvc, d.Validate)
	registerEnrollmentAPI(g, jwt, d.EnrollmentSvc, d.Validate)
	registerAttendanceAPI(g, jwt, d.EnrollmentSvc, d.LessonSvc, d.Validate)
	registerPaymentAPI(g, jwt, d.PaymentSvc, d.Validate)
}

func (s *server) Start() error {
	return s.app.Start(s.conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "Server is running"})
}
