package main

import (
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger, err := logsvc.NewLogger(conf)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()

	teacherRepo := sqlxrepos.NewTeacherRepository(db, conf)
	usrRepo := sqlxrepos.NewUserRepository(db, conf)

	// start CLI
	cli := commandLine{
		db:          db.DB,
		validate:    validate,
		translator:  translator,
		usrRepo:     usrRepo,
		teacherRepo: teacherRepo,
		usrSvc:      user.NewService(usrRepo, teacher.NewService(teacherRepo)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err, map[string]interface{}{"args": os.Args[1:]})
		}
		logger.Sync()
		os.Exit(1)
	}
}
