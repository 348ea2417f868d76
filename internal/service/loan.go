package service

import (
	"context"
	"time"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/bookdesk/librarian/internal/repository"
	"github.com/bookdesk/librarian/pkg/kafka"
	"go.uber.org/zap"
)

// DefaultLoanPeriodDays is how long a borrowed book may be kept.
const DefaultLoanPeriodDays = 14

// EventPublisher feeds loan transitions to interested downstream consumers.
type EventPublisher interface {
	Publish(topic string, v any) error
}

type LoanService struct {
	log        *zap.Logger
	repo       repository.LoanRepository
	events     EventPublisher
	periodDays int
	now        func() time.Time
}

func NewLoanService(repo repository.LoanRepository, events EventPublisher, periodDays int, log *zap.Logger) *LoanService {
	if periodDays <= 0 {
		periodDays = DefaultLoanPeriodDays
	}
	return &LoanService{
		log:        log,
		repo:       repo,
		events:     events,
		periodDays: periodDays,
		now:        time.Now,
	}
}

func (s *LoanService) Borrow(ctx context.Context, bookID int64, student string) (model.Loan, error) {
	borrowDate := s.now().UTC()
	dueDate := borrowDate.AddDate(0, 0, s.periodDays)

	loan, err := s.repo.Borrow(ctx, bookID, student, borrowDate, dueDate)
	if err != nil {
		return model.Loan{}, err
	}
	s.publish(model.EventBorrowed, loan)
	return loan, nil
}

func (s *LoanService) Return(ctx context.Context, bookID int64, student string) (model.Loan, error) {
	loan, err := s.repo.Return(ctx, bookID, student, s.now().UTC())
	if err != nil {
		return model.Loan{}, err
	}
	s.publish(model.EventReturned, loan)
	return loan, nil
}

func (s *LoanService) ListByStudent(ctx context.Context, student string) ([]model.LoanView, error) {
	return s.repo.ListByStudent(ctx, student)
}

func (s *LoanService) ListAll(ctx context.Context) ([]model.LoanView, error) {
	return s.repo.ListAll(ctx)
}

func (s *LoanService) HasOpenLoan(ctx context.Context, bookID int64, student string) (bool, error) {
	return s.repo.HasOpenLoan(ctx, bookID, student)
}

// publish runs strictly after commit and never fails the operation.
func (s *LoanService) publish(kind model.EventKind, loan model.Loan) {
	if s.events == nil {
		return
	}
	event := model.LoanEvent{
		Kind:    kind,
		LoanUid: loan.LoanUid,
		BookID:  loan.BookID,
		Student: loan.Student,
		At:      s.now().UTC(),
	}
	if err := s.events.Publish(kafka.LoanEventsTopic, event); err != nil {
		s.log.Warn("publish loan event", zap.String("loanUid", loan.LoanUid), zap.Error(err))
	}
}
