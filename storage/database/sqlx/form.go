package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ucfglobal/studentforms/core/form"
)

// baseColumns are shared by every form-type table; the per-type extras
// (other_reason, completion_type, comments, remarks) are appended from the
// Type registry. Table and column names come from that static registry and
// never from request input.
var baseColumns = []string{"student_name", "student_id", "program", "submission_date", "status", "form_data"}

type formRepository struct {
	db *sqlx.DB
}

var _ form.Repository = (*formRepository)(nil) // interface compliance check

func NewFormRepository(db *sql.DB, driverName string) *formRepository {
	return &formRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo *formRepository) CreateSubmission(ctx context.Context, t form.Type, sub form.Submission) (form.Submission, error) {
	cols := append([]string{}, baseColumns...)
	cols = append(cols, t.ExtraColumns...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	args := []interface{}{sub.StudentName, sub.StudentID, sub.Program, sub.SubmissionDate, sub.Status, sub.FormData}
	for _, col := range t.ExtraColumns {
		args = append(args, *sub.ExtraColumn(col))
	}

	if err := repo.db.QueryRowxContext(ctx, query, args...).Scan(&sub.ID); err != nil {
		return form.Submission{}, errors.Wrapf(err, "inserting into %s", t.Table)
	}
	return sub, nil
}

func (repo *formRepository) QuerySubmissions(ctx context.Context, t form.Type, skip, limit int) ([]form.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id OFFSET $1", selectColumns(t), t.Table)
	args := []interface{}{skip}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := repo.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", t.Table)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]form.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows, t)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning %s row", t.Table)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "querying %s", t.Table)
	}
	return subs, nil
}

func (repo *formRepository) GetSubmissionByID(ctx context.Context, t form.Type, id int) (form.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(t), t.Table)

	rows, err := repo.db.QueryxContext(ctx, query, id)
	if err != nil {
		return form.Submission{}, errors.Wrapf(err, "getting %s %d", t.Table, id)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return form.Submission{}, errors.Wrapf(err, "getting %s %d", t.Table, id)
		}
		return form.Submission{}, form.ErrNotFound
	}
	sub, err := scanSubmission(rows, t)
	if err != nil {
		return form.Submission{}, errors.Wrapf(err, "scanning %s %d", t.Table, id)
	}
	return sub, nil
}

func (repo *formRepository) DeleteSubmissionByID(ctx context.Context, t form.Type, id int) error {
	res, err := repo.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.Table), id)
	if err != nil {
		return errors.Wrapf(err, "deleting %s %d", t.Table, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "deleting %s %d", t.Table, id)
	}
	if n == 0 {
		return form.ErrNotFound
	}
	return nil
}

func (repo *formRepository) DeleteAllSubmissions(ctx context.Context, t form.Type) (int, error) {
	res, err := repo.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t.Table))
	if err != nil {
		return 0, errors.Wrapf(err, "deleting all %s", t.Table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrapf(err, "deleting all %s", t.Table)
	}
	return int(n), nil
}

func selectColumns(t form.Type) string {
	cols := append([]string{"id"}, baseColumns...)
	cols = append(cols, t.ExtraColumns...)
	return strings.Join(cols, ", ")
}

func scanSubmission(rows *sqlx.Rows, t form.Type) (form.Submission, error) {
	var sub form.Submission
	dest := []interface{}{&sub.ID, &sub.StudentName, &sub.StudentID, &sub.Program, &sub.SubmissionDate, &sub.Status, &sub.FormData}
	for _, col := range t.ExtraColumns {
		dest = append(dest, sub.ExtraColumn(col))
	}
	if err := rows.Scan(dest...); err != nil {
		return form.Submission{}, err
	}
	return sub, nil
}
