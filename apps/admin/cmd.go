package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/ucfglobal/studentforms/core/form"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sql.DB
	formSvc *form.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb                  - create the database and app user if missing")
	fmt.Println("  migrate SUBCOMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  purge -form SLUG          - delete every submission (and attachments) of a form type")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	purgeSlug := purgeCmd.String("form", "", "The form type slug, eg. exit-forms.")

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "purge":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *purgeSlug == "" {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.purge(*purgeSlug)
	default:
		cli.printUsage()
		return errHelp
	}
}
