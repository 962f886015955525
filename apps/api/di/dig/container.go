package dig_container

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// ServerParams is everything the HTTP server is built from.
type ServerParams struct {
	dig.In

	Conf          *core.Config
	Shutdown      chan os.Signal
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

func newLogger(conf *core.Config) (*logsvc.Logger, core.Logger) {
	logger, err := logsvc.NewLogger(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	return logger, logger
}

func newDBLogger(logger *logsvc.Logger, conf *core.Config) core.Logger {
	return logsvc.New(logger.Zap().Named("db"), conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return db, db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newShutdownChannel() chan os.Signal {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	return shutdown
}

func newServer(p ServerParams) echoapi.Server {
	return echoapi.NewServer(p.Conf, p.Shutdown, &echoapi.Deps{
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		TeacherSvc:    p.TeacherSvc,
		SubjectSvc:    p.SubjectSvc,
		GroupSvc:      p.GroupSvc,
		StudentSvc:    p.StudentSvc,
		LessonSvc:     p.LessonSvc,
		EnrollmentSvc: p.EnrollmentSvc,
		PaymentSvc:    p.PaymentSvc,
	})
}

// New returns a new dependency injection dig.Container
func New(opts ...dig.Option) *dig.Container {
	c := dig.New(opts...)

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newShutdownChannel))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewTeacherRepository, dig.As(new(teacher.Repository))))
	must(c.Provide(sqlxrepos.NewSubjectRepository, dig.As(new(subject.Repository))))
	must(c.Provide(sqlxrepos.NewGroupRepository, dig.As(new(group.Repository))))
	must(c.Provide(sqlxrepos.NewStudentRepository, dig.As(new(student.Repository))))
	must(c.Provide(sqlxrepos.NewLessonRepository, dig.As(new(lesson.Repository))))
	must(c.Provide(sqlxrepos.NewEnrollmentRepository, dig.As(new(enrollment.Repository))))
	must(c.Provide(sqlxrepos.NewPaymentRepository, dig.As(new(payment.Repository))))

	// services
	must(c.Provide(teacher.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(user.NewService))
	must(c.Provide(group.NewService))
	must(c.Provide(lesson.NewService))
	must(c.Provide(enrollment.NewService))
	must(c.Provide(payment.NewService))

	// what services need from each other
	must(c.Provide(func(svc *teacher.Service) user.Teachers { return svc }))
	must(c.Provide(func(svc *teacher.Service) group.AssignmentChecker { return svc }))
	must(c.Provide(func(svc *teacher.Service) lesson.Teachers { return svc }))
	must(c.Provide(func(svc *lesson.Service) enrollment.Lessons { return svc }))
	must(c.Provide(func(svc *student.Service) enrollment.Students { return svc }))
	must(c.Provide(func(svc *lesson.Service) payment.Lessons { return svc }))
	must(c.Provide(func(svc *student.Service) payment.Students { return svc }))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
