package repository

import (
	"context"
	"database/sql"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type StudentRepository interface {
	Register(ctx context.Context, student model.Student) error
	List(ctx context.Context) ([]model.Student, error)
	Delete(ctx context.Context, username string) error
	EmailOf(ctx context.Context, username string) (string, error)
}

type studentRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewStudentRepository(db *sqlx.DB, log *zap.Logger) (*studentRepository, error) {
	return &studentRepository{
		db:  db,
		log: log.Named("student-repo"),
	}, nil
}

func (r *studentRepository) Register(ctx context.Context, student model.Student) error {
	query, args, err := qb.Insert(studentsTableName).
		Columns("username", "email").
		Values(student.Username, student.Email).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return errors.Wrap(errs.ErrConflict, "username already taken")
		}
		return err
	}
	return nil
}

func (r *studentRepository) List(ctx context.Context) ([]model.Student, error) {
	query, args, err := qb.Select("username", "email").
		From(studentsTableName).
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	students := make([]model.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) Delete(ctx context.Context, username string) error {
	query, args, err := qb.Delete(studentsTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isPgErrCode(err, pgerrcode.ForeignKeyViolation) {
			return errors.Wrap(errs.ErrConflict, "student has loan history")
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *studentRepository) EmailOf(ctx context.Context, username string) (string, error) {
	query, args, err := qb.Select("email").
		From(studentsTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return "", err
	}

	var email string
	if err := r.db.GetContext(ctx, &email, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return email, nil
}
