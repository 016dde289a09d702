package main

import (
	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/storage/database"
)

var createDBFunc = database.CreateIfNotExist // mockable

func (cli *commandLine) createDB() error {
	return createDBFunc(core.Conf)
}
