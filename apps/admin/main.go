package main

import (
	"log"
	"os"

	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/core/form"
	emailsvc "github.com/ucfglobal/studentforms/services/email"
	logsvc "github.com/ucfglobal/studentforms/services/logger"
	"github.com/ucfglobal/studentforms/storage/database"
	sqlxrepos "github.com/ucfglobal/studentforms/storage/database/sqlx"
	"github.com/ucfglobal/studentforms/storage/files"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.LoadConfig()
	core.InitValidators()

	cli := commandLine{}

	// createdb runs before the app database exists; everything else needs it
	if len(os.Args) > 1 && os.Args[1] != "createdb" {
		db, err := database.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		errAndDie(database.Ping(db))

		coreLogger := logsvc.NewConsoleLogger(logger)
		cli.db = db
		cli.formSvc = form.NewService(
			sqlxrepos.NewFormRepository(db, conf.Database.Engine),
			files.NewStore(conf.Uploads.Root, coreLogger),
			emailsvc.NewConsoleService(),
			coreLogger,
		)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
