package handler

import (
	"context"
	"time"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/bookdesk/librarian/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	GetBook(ctx context.Context, bookID int64) (model.Book, error)
	UpdateBook(ctx context.Context, bookID int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookID int64) error
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Book, error)
	Categories(ctx context.Context) []string
}

type LoanService interface {
	Borrow(ctx context.Context, bookID int64, student string) (model.Loan, error)
	Return(ctx context.Context, bookID int64, student string) (model.Loan, error)
	ListByStudent(ctx context.Context, student string) ([]model.LoanView, error)
	ListAll(ctx context.Context) ([]model.LoanView, error)
	HasOpenLoan(ctx context.Context, bookID int64, student string) (bool, error)
}

type OverdueService interface {
	FindOverdue(ctx context.Context, asOf time.Time) ([]model.OverdueLoan, error)
	SendNotices(ctx context.Context, asOf time.Time) (int, error)
}

type StudentService interface {
	Register(ctx context.Context, student model.Student) error
	List(ctx context.Context) ([]model.Student, error)
	Delete(ctx context.Context, username string) error
}

var (
	_ CatalogService = (*service.CatalogService)(nil)
	_ LoanService    = (*service.LoanService)(nil)
	_ OverdueService = (*service.OverdueService)(nil)
	_ StudentService = (*service.StudentService)(nil)
)
