package service

import (
	"context"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/bookdesk/librarian/internal/repository"
	"go.uber.org/zap"
)

type StudentService struct {
	log  *zap.Logger
	repo repository.StudentRepository
}

func NewStudentService(repo repository.StudentRepository, log *zap.Logger) *StudentService {
	return &StudentService{
		log:  log,
		repo: repo,
	}
}

func (s *StudentService) Register(ctx context.Context, student model.Student) error {
	return s.repo.Register(ctx, student)
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return s.repo.List(ctx)
}

func (s *StudentService) Delete(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}
