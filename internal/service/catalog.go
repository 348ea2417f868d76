package service

import (
	"context"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/bookdesk/librarian/internal/repository"
	"go.uber.org/zap"
)

// The categories the catalog recognizes; the search filter matches them exactly.
var bookCategories = []string{
	"Science Fiction", "Romantic", "Mystery", "Biography",
	"History", "Fantasy", "Self-Help", "Technology",
}

type CatalogService struct {
	log  *zap.Logger
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		log:  log,
		repo: repo,
	}
}

func (s *CatalogService) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, req)
}

func (s *CatalogService) GetBook(ctx context.Context, bookID int64) (model.Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

func (s *CatalogService) UpdateBook(ctx context.Context, bookID int64, req model.BookRequest) (model.Book, error) {
	return s.repo.UpdateBook(ctx, bookID, req)
}

func (s *CatalogService) DeleteBook(ctx context.Context, bookID int64) error {
	return s.repo.DeleteBook(ctx, bookID)
}

func (s *CatalogService) Search(ctx context.Context, filter model.SearchFilter) ([]model.Book, error) {
	return s.repo.Search(ctx, filter)
}

func (s *CatalogService) Categories(_ context.Context) []string {
	return bookCategories
}
