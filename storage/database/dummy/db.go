package dummydb

import (
	"sync"

	"github.com/ucfglobal/studentforms/core/form"
)

type (
	DB struct {
		forms map[string]*formTable // keyed by form type slug
	}

	formTable struct {
		sync.RWMutex
		table   map[int]*form.Submission
		pkCount int
	}
)

func Open() (*DB, error) {
	db := &DB{forms: make(map[string]*formTable, len(form.Types))}
	for _, t := range form.Types {
		db.forms[t.Slug] = &formTable{table: make(map[int]*form.Submission)}
	}
	return db, nil
}
