package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type LoanRepository interface {
	Borrow(ctx context.Context, bookID int64, student string, borrowDate, dueDate time.Time) (model.Loan, error)
	Return(ctx context.Context, bookID int64, student string, returnedAt time.Time) (model.Loan, error)
	ListByStudent(ctx context.Context, student string) ([]model.LoanView, error)
	ListAll(ctx context.Context) ([]model.LoanView, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]model.OverdueLoan, error)
	HasOpenLoan(ctx context.Context, bookID int64, student string) (bool, error)
}

type loanRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewLoanRepository(db *sqlx.DB, log *zap.Logger) (*loanRepository, error) {
	return &loanRepository{
		db:  db,
		log: log.Named("loan-repo"),
	}, nil
}

// Borrow is the Available -> Borrowed transition. The availability check,
// the ledger insert and the flag flip run in one transaction with the book
// row locked, so two concurrent borrows of the same book serialize and the
// loser observes available=false.
func (r *loanRepository) Borrow(ctx context.Context, bookID int64, student string, borrowDate, dueDate time.Time) (model.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var available bool
	err = tx.QueryRowContext(ctx,
		`select available from books where id = $1 for update`, bookID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	if !available {
		return model.Loan{}, errs.ErrNotAvailable
	}

	query, args, err := qb.Insert(loansTableName).
		Columns("loan_uid", "book_id", "student", "borrow_date", "due_date").
		Values(uuid.New(), bookID, student, borrowDate.Format(time.DateOnly), dueDate.Format(time.DateOnly)).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := tx.GetContext(ctx, &loan, query, args...); err != nil {
		// the partial unique index on open loans backstops the flag check
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return model.Loan{}, errs.ErrNotAvailable
		}
		if isPgErrCode(err, pgerrcode.ForeignKeyViolation) {
			return model.Loan{}, errs.ErrNotFound
		}
		r.log.Error("Borrow insert", zap.String("q", query), zap.Any("args", args))
		return model.Loan{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`update books set available = false where id = $1`, bookID); err != nil {
		return model.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, errors.Wrap(err, "commit borrow")
	}
	return loan, nil
}

// Return is the Borrowed -> Available transition. It closes the most recent
// open loan for the exact (book, student) pair; anything else is ErrNoActiveLoan
// and nothing is mutated.
func (r *loanRepository) Return(ctx context.Context, bookID int64, student string, returnedAt time.Time) (model.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	// same lock order as Borrow: book row first, then the loan row
	var id int64
	err = tx.QueryRowContext(ctx,
		`select id from books where id = $1 for update`, bookID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNoActiveLoan
		}
		return model.Loan{}, err
	}

	const closeLoan = `
update loans set returned = true, returned_at = $3
where id = (
	select id from loans
	where book_id = $1 and student = $2 and not returned
	order by borrow_date desc, id desc
	limit 1
)
returning id, loan_uid, book_id, student, borrow_date, due_date, returned, returned_at`

	var loan model.Loan
	if err := tx.GetContext(ctx, &loan, closeLoan, bookID, student, returnedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNoActiveLoan
		}
		return model.Loan{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`update books set available = true where id = $1`, bookID); err != nil {
		return model.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, errors.Wrap(err, "commit return")
	}
	return loan, nil
}

func (r *loanRepository) ListByStudent(ctx context.Context, student string) ([]model.LoanView, error) {
	query, args, err := qb.Select(
		"l.id", "l.loan_uid", "l.book_id", "l.student", "l.borrow_date",
		"l.due_date", "l.returned", "l.returned_at", "b.title as book_title").
		From(loansTableName + " l").
		Join(booksTableName + " b on b.id = l.book_id").
		Where(sq.Eq{"l.student": student}).
		OrderBy("l.borrow_date DESC", "l.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	loans := make([]model.LoanView, 0)
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) ListAll(ctx context.Context) ([]model.LoanView, error) {
	query, args, err := qb.Select(
		"l.id", "l.loan_uid", "l.book_id", "l.student", "l.borrow_date",
		"l.due_date", "l.returned", "l.returned_at", "b.title as book_title",
		"coalesce(u.email, '') as email").
		From(loansTableName + " l").
		Join(booksTableName + " b on b.id = l.book_id").
		LeftJoin(studentsTableName + " u on u.username = l.student").
		OrderBy("l.borrow_date DESC", "l.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	loans := make([]model.LoanView, 0)
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}

// FindOverdue is a snapshot read, deliberately lock-free: a loan returned
// while the scan runs is at worst included once more.
func (r *loanRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]model.OverdueLoan, error) {
	query, args, err := qb.Select(
		"l.loan_uid", "l.book_id", "b.title as book_title", "l.student",
		"coalesce(u.email, '') as email", "l.due_date").
		From(loansTableName + " l").
		Join(booksTableName + " b on b.id = l.book_id").
		LeftJoin(studentsTableName + " u on u.username = l.student").
		Where(sq.Eq{"l.returned": false}).
		Where(sq.Lt{"l.due_date": asOf.Format(time.DateOnly)}).
		OrderBy("l.due_date ASC", "l.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("FindOverdue", zap.String("query", query), zap.Any("args", args))

	overdue := make([]model.OverdueLoan, 0)
	if err := r.db.SelectContext(ctx, &overdue, query, args...); err != nil {
		return nil, err
	}
	return overdue, nil
}

func (r *loanRepository) HasOpenLoan(ctx context.Context, bookID int64, student string) (bool, error) {
	const q = `
	select exists(
		select 1 from loans
		where book_id = $1 and student = $2 and not returned
	)`
	var has bool
	if err := r.db.QueryRowContext(ctx, q, bookID, student).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}
