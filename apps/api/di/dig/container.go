package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/Tatyana-Kavardaeva/My-LMS/apps/api/echo"
	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
	emailsvc "github.com/Tatyana-Kavardaeva/My-LMS/services/email"
	logsvc "github.com/Tatyana-Kavardaeva/My-LMS/services/logger"
	"github.com/Tatyana-Kavardaeva/My-LMS/storage/database"
	sqlxrepos "github.com/Tatyana-Kavardaeva/My-LMS/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(db); err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newUserGetter(svc user.Service) material.UserGetter {
	return svc
}

type ServerParams struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	UserSvc     user.Service
	MaterialSvc material.Service
	QuizSvc     quiz.Service
	Validate    *validator.Validate
	Translator  ut.Translator
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		UserSvc:     p.UserSvc,
		MaterialSvc: p.MaterialSvc,
		QuizSvc:     p.QuizSvc,
		Validate:    p.Validate,
		Translator:  p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewMaterialRepository, dig.As(new(material.Repository), new(quiz.Materials))))
	must(c.Provide(sqlxrepos.NewQuizRepository, dig.As(new(quiz.Repository))))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(newUserGetter))
	must(c.Provide(material.NewService))
	must(c.Provide(quiz.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
