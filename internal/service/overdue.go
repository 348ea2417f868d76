package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/bookdesk/librarian/internal/notify"
	"github.com/bookdesk/librarian/internal/repository"
	"go.uber.org/zap"
)

type OverdueService struct {
	log      *zap.Logger
	repo     repository.LoanRepository
	notifier notify.Notifier
}

func NewOverdueService(repo repository.LoanRepository, notifier notify.Notifier, log *zap.Logger) *OverdueService {
	return &OverdueService{
		log:      log,
		repo:     repo,
		notifier: notifier,
	}
}

func (s *OverdueService) FindOverdue(ctx context.Context, asOf time.Time) ([]model.OverdueLoan, error) {
	return s.repo.FindOverdue(ctx, asOf)
}

// SendNotices scans for overdue loans and mails each borrower with a known
// email. Delivery is best effort: failures are logged and the scan carries on.
// The returned count is the number of notices the notifier delivered.
func (s *OverdueService) SendNotices(ctx context.Context, asOf time.Time) (int, error) {
	overdue, err := s.repo.FindOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, loan := range overdue {
		if loan.Email == "" {
			s.log.Debug("overdue loan without email, skipping",
				zap.String("student", loan.Student), zap.String("loanUid", loan.LoanUid))
			continue
		}
		subject := fmt.Sprintf("Overdue notice for '%s'", loan.BookTitle)
		body := fmt.Sprintf("Dear %s,\nYour borrowed book '%s' was due on %s. Please return it as soon as possible.",
			loan.Student, loan.BookTitle, loan.DueDate.Format(time.DateOnly))
		if err := s.notifier.Send(ctx, loan.Email, subject, body); err != nil {
			s.log.Warn("send overdue notice",
				zap.String("to", loan.Email), zap.String("loanUid", loan.LoanUid), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
