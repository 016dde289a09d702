package dummydb

import (
	"context"
	"sort"

	"github.com/ucfglobal/studentforms/core/form"
)

type formRepository struct {
	db *DB
}

var _ form.Repository = (*formRepository)(nil) // interface compliance check

func NewFormRepository(db *DB) form.Repository {
	return &formRepository{db: db}
}

// query returns the table's rows ordered by ascending id.
func (repo *formRepository) query(tbl *formTable) []form.Submission {
	subs := make([]form.Submission, 0, len(tbl.table))
	for _, sub := range tbl.table {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}

func (repo *formRepository) CreateSubmission(_ context.Context, t form.Type, sub form.Submission) (form.Submission, error) {
	tbl := repo.db.forms[t.Slug]
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	sub.ID = tbl.pkCount
	tbl.table[sub.ID] = &sub
	return sub, nil
}

func (repo *formRepository) QuerySubmissions(_ context.Context, t form.Type, skip, limit int) ([]form.Submission, error) {
	tbl := repo.db.forms[t.Slug]
	tbl.RLock()
	defer tbl.RUnlock()

	subs := repo.query(tbl)
	if skip >= len(subs) {
		return []form.Submission{}, nil
	}
	subs = subs[skip:]
	if limit > 0 && limit < len(subs) {
		subs = subs[:limit]
	}
	return subs, nil
}

func (repo *formRepository) GetSubmissionByID(_ context.Context, t form.Type, id int) (form.Submission, error) {
	tbl := repo.db.forms[t.Slug]
	tbl.RLock()
	defer tbl.RUnlock()

	if sub, ok := tbl.table[id]; ok {
		return *sub, nil
	}
	return form.Submission{}, form.ErrNotFound
}

func (repo *formRepository) DeleteSubmissionByID(_ context.Context, t form.Type, id int) error {
	tbl := repo.db.forms[t.Slug]
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[id]; !ok {
		return form.ErrNotFound
	}
	delete(tbl.table, id)
	return nil
}

func (repo *formRepository) DeleteAllSubmissions(_ context.Context, t form.Type) (int, error) {
	tbl := repo.db.forms[t.Slug]
	tbl.Lock()
	defer tbl.Unlock()

	count := len(tbl.table)
	tbl.table = make(map[int]*form.Submission)
	return count, nil
}
