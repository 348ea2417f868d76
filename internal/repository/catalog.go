package repository

import (
	"context"
	"database/sql"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CatalogRepository interface {
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	GetBook(ctx context.Context, bookID int64) (model.Book, error)
	UpdateBook(ctx context.Context, bookID int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookID int64) error
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Book, error)
	SetAvailability(ctx context.Context, bookID int64, available bool) error
}

type catalogRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewCatalogRepository(db *sqlx.DB, log *zap.Logger) (*catalogRepository, error) {
	return &catalogRepository{
		db:  db,
		log: log.Named("catalog-repo"),
	}, nil
}

const (
	booksTableName    = `books`
	loansTableName    = `loans`
	studentsTableName = `students`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookColumns = []string{
	"id", "title", "author", "category", "isbn", "description",
	"cover_ref", "document_ref", "available", "created_at",
}

func isPgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func (r *catalogRepository) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "category", "isbn", "description", "cover_ref", "document_ref").
		Values(req.Title, req.Author, req.Category, req.ISBN, req.Description, req.CoverRef, req.DocumentRef).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return model.Book{}, errors.Wrap(errs.ErrConflict, "isbn already exists")
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
}

func (r *catalogRepository) GetBook(ctx context.Context, bookID int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *catalogRepository) UpdateBook(ctx context.Context, bookID int64, req model.BookRequest) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("category", req.Category).
		Set("isbn", req.ISBN).
		Set("description", req.Description).
		Set("cover_ref", req.CoverRef).
		Set("document_ref", req.DocumentRef).
		Where(sq.Eq{"id": bookID}).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return model.Book{}, errors.Wrap(errs.ErrConflict, "isbn already exists")
		}
		return model.Book{}, err
	}
	return book, nil
}

// DeleteBook refuses to delete a book that appears in the loan ledger:
// the ledger is a permanent historical record.
func (r *catalogRepository) DeleteBook(ctx context.Context, bookID int64) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isPgErrCode(err, pgerrcode.ForeignKeyViolation) {
			return errors.Wrap(errs.ErrConflict, "book has loan history")
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *catalogRepository) Search(ctx context.Context, filter model.SearchFilter) ([]model.Book, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("created_at DESC", "id DESC")

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": kw},
			sq.ILike{"author": kw},
		})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.OnlyAvailable {
		q = q.Where(sq.Eq{"available": true})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("Search", zap.String("query", query), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *catalogRepository) SetAvailability(ctx context.Context, bookID int64, available bool) error {
	query, args, err := qb.Update(booksTableName).
		Set("available", available).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
