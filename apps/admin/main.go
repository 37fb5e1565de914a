package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/jmoiron/sqlx"

	"github.com/studorg/quorum/core"
	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
	emailsvc "github.com/studorg/quorum/services/email"
	logsvc "github.com/studorg/quorum/services/logger"
	"github.com/studorg/quorum/storage/database"
	sqlxrepos "github.com/studorg/quorum/storage/database/sqlx"
)

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	core.InitValidators(newTranslator())

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	sqlxDB := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	memberSvc := member.NewService(sqlxrepos.NewMemberRepository(sqlxDB), mailSvc, conf)
	electionSvc := election.NewService(sqlxrepos.NewElectionRepository(sqlxDB), memberSvc)

	// start CLI
	cli := &commandLine{
		db:          db,
		memberSvc:   memberSvc,
		electionSvc: electionSvc,
		out:         os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
